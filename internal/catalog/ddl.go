package catalog

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kilndb/kilndb/internal/ast"
	"github.com/kilndb/kilndb/internal/relation"
)

// Execute dispatches a statement to the matching handler and returns its
// result. DDL statements return a result with only Message populated;
// SHOW statements populate the full envelope.
func (c *Catalog) Execute(stmt ast.Statement) (*QueryResult, error) {
	switch s := stmt.(type) {
	case ast.CreateTable:
		return c.createTable(s)
	case ast.DropTable:
		return c.dropTable(s)
	case ast.CreateIndex:
		return c.createIndex(s)
	case ast.DropIndex:
		return c.dropIndex(s)
	case ast.ShowTables:
		return c.showTables()
	case ast.ShowColumns:
		return c.showColumns(s)
	case ast.ShowIndex:
		return c.showIndex(s)
	default:
		return nil, errors.Wrapf(ErrExec, "unknown statement type %T", stmt)
	}
}

func (c *Catalog) createTable(s ast.CreateTable) (*QueryResult, error) {
	var uow unitOfWork

	hTable, err := c.tables.Insert(relation.Row{"table_name": relation.TextValue(s.Table)})
	if err != nil {
		return nil, wrapRelErr(err, "create table %s: insert into _tables", s.Table)
	}
	uow.record(func() { safeDelete(c.tables, hTable) })

	schema := make(relation.Schema, 0, len(s.Columns))
	for _, col := range s.Columns {
		h, err := c.columns.Insert(relation.Row{
			"table_name":  relation.TextValue(s.Table),
			"column_name": relation.TextValue(col.Name),
			"data_type":   relation.TextValue(col.Type.String()),
		})
		if err != nil {
			uow.rollback()
			return nil, wrapRelErr(err, "create table %s: insert column %s", s.Table, col.Name)
		}
		handle := h
		uow.record(func() { safeDelete(c.columns, handle) })
		schema = append(schema, relation.Column{Name: col.Name, Type: col.Type})
	}

	phys := relation.New(c.dir, s.Table, schema)
	if err := phys.Create(); err != nil {
		uow.rollback()
		log.WithField("table", s.Table).Warn("catalog: create table rolled back")
		return nil, wrapRelErr(err, "create table %s: physical create", s.Table)
	}

	log.WithField("table", s.Table).Info("catalog: created table")
	return &QueryResult{Message: "created " + s.Table}, nil
}

func (c *Catalog) dropTable(s ast.DropTable) (*QueryResult, error) {
	if isReserved(s.Table) {
		return nil, errors.Wrapf(ErrExec, "cannot drop reserved table %s", s.Table)
	}

	colHandles, err := c.columns.SelectWhere(relation.Row{"table_name": relation.TextValue(s.Table)})
	if err != nil {
		return nil, wrapRelErr(err, "drop table %s: scan _columns", s.Table)
	}
	for _, h := range colHandles {
		safeDelete(c.columns, h)
	}

	phys := relation.New(c.dir, s.Table, nil)
	if err := phys.Open(); err == nil {
		if err := phys.Drop(); err != nil {
			return nil, wrapRelErr(err, "drop table %s: physical drop", s.Table)
		}
	}

	tableHandles, err := c.tables.SelectWhere(relation.Row{"table_name": relation.TextValue(s.Table)})
	if err != nil {
		return nil, wrapRelErr(err, "drop table %s: scan _tables", s.Table)
	}
	for _, h := range tableHandles {
		safeDelete(c.tables, h)
	}

	log.WithField("table", s.Table).Info("catalog: dropped table")
	return &QueryResult{Message: "dropped " + s.Table}, nil
}

func (c *Catalog) createIndex(s ast.CreateIndex) (*QueryResult, error) {
	indexType := s.IndexType
	if indexType == "" {
		indexType = c.defaultIndexType
	}
	isUnique := indexType == "BTREE"

	var uow unitOfWork
	for i, col := range s.IndexColumns {
		h, err := c.indices.Insert(relation.Row{
			"table_name":   relation.TextValue(s.Table),
			"index_name":   relation.TextValue(s.Index),
			"seq_in_index": relation.IntValue(int32(i + 1)),
			"column_name":  relation.TextValue(col),
			"index_type":   relation.TextValue(indexType),
			"is_unique":    relation.BoolValue(isUnique),
		})
		if err != nil {
			uow.rollback()
			return nil, wrapRelErr(err, "create index %s: insert into _indices", s.Index)
		}
		handle := h
		uow.record(func() { safeDelete(c.indices, handle) })
	}

	if err := c.idx.Create(s.Table, s.Index); err != nil {
		uow.rollback()
		return nil, errors.Wrapf(err, "create index %s on %s", s.Index, s.Table)
	}

	log.WithFields(log.Fields{"table": s.Table, "index": s.Index}).Info("catalog: created index")
	return &QueryResult{Message: "created index " + s.Index}, nil
}

func (c *Catalog) dropIndex(s ast.DropIndex) (*QueryResult, error) {
	if err := c.idx.Drop(s.Table, s.Index); err != nil {
		return nil, errors.Wrapf(ErrExec, "index not found: %s", s.Index)
	}

	handles, err := c.indices.SelectWhere(relation.Row{
		"table_name": relation.TextValue(s.Table),
		"index_name": relation.TextValue(s.Index),
	})
	if err != nil {
		return nil, wrapRelErr(err, "drop index %s: scan _indices", s.Index)
	}
	for _, h := range handles {
		safeDelete(c.indices, h)
	}

	log.WithFields(log.Fields{"table": s.Table, "index": s.Index}).Info("catalog: dropped index")
	return &QueryResult{Message: "dropped index " + s.Index}, nil
}

func safeDelete(t *relation.Table, h relation.Handle) {
	if err := t.Delete(h); err != nil {
		log.WithError(err).Warn("catalog: compensating delete failed, continuing best effort")
	}
}

func wrapRelErr(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, "DbRelationError: "+format, args...)
}
