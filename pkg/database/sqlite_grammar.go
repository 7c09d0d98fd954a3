package database

// SQLiteGrammar, SQLite lehçesidir. LIMIT -1 SQLite'ta sınırsız demektir.
type SQLiteGrammar struct {
	sqlGrammar
}

func NewSQLiteGrammar() *SQLiteGrammar {
	return &SQLiteGrammar{sqlGrammar{
		name:            "sqlite",
		quote:           `"`,
		offsetOnlyLimit: "-1",
	}}
}
