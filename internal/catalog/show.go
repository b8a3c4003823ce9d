package catalog

import (
	"fmt"

	"github.com/kilndb/kilndb/internal/ast"
	"github.com/kilndb/kilndb/internal/relation"
)

func successMessage(n int) string {
	return fmt.Sprintf("successfully returned %d rows", n)
}

// showTables scans _tables and excludes the three reserved catalog names.
func (c *Catalog) showTables() (*QueryResult, error) {
	handles, err := c.tables.Select()
	if err != nil {
		return nil, wrapRelErr(err, "show tables")
	}

	var rows [][]relation.Value
	for _, h := range handles {
		row, err := c.tables.Project(h, nil)
		if err != nil {
			return nil, wrapRelErr(err, "show tables: project")
		}
		name := row["table_name"].Text()
		if isReserved(name) {
			continue
		}
		rows = append(rows, []relation.Value{row["table_name"]})
	}

	return &QueryResult{
		ColumnNames:      []string{"table_name"},
		ColumnAttributes: []relation.ColType{relation.ColText},
		Rows:             rows,
		Message:          successMessage(len(rows)),
	}, nil
}

// showColumns projects (table_name, column_name, data_type) for every
// _columns row belonging to s.Table.
func (c *Catalog) showColumns(s ast.ShowColumns) (*QueryResult, error) {
	cols := []string{"table_name", "column_name", "data_type"}
	handles, err := c.columns.SelectWhere(relation.Row{"table_name": relation.TextValue(s.Table)})
	if err != nil {
		return nil, wrapRelErr(err, "show columns from %s", s.Table)
	}

	rows := make([][]relation.Value, 0, len(handles))
	for _, h := range handles {
		row, err := c.columns.Project(h, cols)
		if err != nil {
			return nil, wrapRelErr(err, "show columns from %s: project", s.Table)
		}
		rows = append(rows, valuesInOrder(row, cols))
	}

	return &QueryResult{
		ColumnNames: cols,
		ColumnAttributes: []relation.ColType{
			relation.ColText, relation.ColText, relation.ColText,
		},
		Rows:    rows,
		Message: successMessage(len(rows)),
	}, nil
}

// showIndex projects (table_name, index_name, column_name, seq_in_index,
// index_type, is_unique) for every _indices row belonging to s.Table.
func (c *Catalog) showIndex(s ast.ShowIndex) (*QueryResult, error) {
	cols := []string{"table_name", "index_name", "column_name", "seq_in_index", "index_type", "is_unique"}
	handles, err := c.indices.SelectWhere(relation.Row{"table_name": relation.TextValue(s.Table)})
	if err != nil {
		return nil, wrapRelErr(err, "show index from %s", s.Table)
	}

	rows := make([][]relation.Value, 0, len(handles))
	for _, h := range handles {
		row, err := c.indices.Project(h, cols)
		if err != nil {
			return nil, wrapRelErr(err, "show index from %s: project", s.Table)
		}
		rows = append(rows, valuesInOrder(row, cols))
	}

	return &QueryResult{
		ColumnNames: cols,
		ColumnAttributes: []relation.ColType{
			relation.ColText, relation.ColText, relation.ColText,
			relation.ColInt, relation.ColText, relation.ColBoolean,
		},
		Rows:    rows,
		Message: successMessage(len(rows)),
	}, nil
}

func valuesInOrder(row relation.Row, cols []string) []relation.Value {
	out := make([]relation.Value, len(cols))
	for i, c := range cols {
		out[i] = row[c]
	}
	return out
}
