package catalog

import "github.com/kilndb/kilndb/internal/relation"

// QueryResult is the printable envelope an executor call returns: either
// a message alone (DDL) or column names/attributes/rows plus a message
// (SHOW). It owns its slices outright.
type QueryResult struct {
	ColumnNames      []string
	ColumnAttributes []relation.ColType
	Rows             [][]relation.Value
	Message          string
}
