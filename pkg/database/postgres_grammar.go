package database

// PostgresGrammar, PostgreSQL lehçesidir: çift tırnak identifier, $n
// placeholder. OFFSET tek başına yazılabilir.
type PostgresGrammar struct {
	sqlGrammar
}

func NewPostgresGrammar() *PostgresGrammar {
	return &PostgresGrammar{sqlGrammar{
		name:     "postgres",
		quote:    `"`,
		numbered: true,
	}}
}
