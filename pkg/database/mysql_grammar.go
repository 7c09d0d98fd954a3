package database

// MySQLGrammar, MySQL/MariaDB lehçesidir: backtick identifier, ? placeholder.
// MySQL OFFSET'i LIMIT'siz kabul etmediği için tek başına offset
// maksimum LIMIT ile yazılır.
type MySQLGrammar struct {
	sqlGrammar
}

func NewMySQLGrammar() *MySQLGrammar {
	return &MySQLGrammar{sqlGrammar{
		name:            "mysql",
		quote:           "`",
		offsetOnlyLimit: "18446744073709551615",
	}}
}
