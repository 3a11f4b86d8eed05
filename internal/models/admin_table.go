package models

// TableRow is a raw database row keyed by column name.
type TableRow map[string]interface{}

// TableFilter selects rows of a whitelisted table by exact column matches.
type TableFilter struct {
	Equals   map[string]interface{}
	OrderBy  string
	Page     int
	PageSize int
}

// TableInfo describes a browsable table.
type TableInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}
