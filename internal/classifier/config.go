package classifier

// Config holds the type families and exclusion lists the rules consult.
type Config struct {
	TextTypes   []string
	StringTypes []string
	TimeTypes   []string
	NumberTypes []string

	NotEdit  []string
	NotList  []string
	NotQuery []string

	// TextareaMinLength is the parenthesized length from which a string column
	// is edited in a textarea.
	TextareaMinLength int
}

// DefaultConfig returns the stock lists, covering MySQL and Postgres type names.
func DefaultConfig() Config {
	return Config{
		TextTypes:   []string{"text", "mediumtext", "longtext"},
		StringTypes: []string{"char", "varchar", "nvarchar", "varchar2", "bpchar"},
		TimeTypes:   []string{"datetime", "time", "date", "timestamp", "timestamptz"},
		NumberTypes: []string{
			"tinyint", "smallint", "mediumint", "int", "number", "integer", "bit", "bigint",
			"float", "double", "decimal", "numeric", "real", "serial",
		},

		NotEdit:  []string{"id", "create_by", "create_time", "del_flag"},
		NotList:  []string{"id", "create_by", "create_time", "del_flag", "update_by", "update_time"},
		NotQuery: []string{"id", "create_by", "create_time", "del_flag", "update_by", "update_time", "remark"},

		TextareaMinLength: 500,
	}
}
