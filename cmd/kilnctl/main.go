// Command kilnctl bootstraps a catalog directory and runs a handful of
// DDL statements against it, printing each step's QueryResult. It is a
// demonstration of the engine, not a shell: statement construction is
// literal, the interactive parser/REPL loop is an external collaborator.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/kilndb/kilndb/internal/ast"
	"github.com/kilndb/kilndb/internal/catalog"
	"github.com/kilndb/kilndb/internal/config"
	"github.com/kilndb/kilndb/internal/relation"
)

func main() {
	var (
		dir        = pflag.StringP("dir", "d", "", "catalog directory (required)")
		configPath = pflag.StringP("config", "c", "", "optional YAML config path")
		verbose    = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "kilnctl: --dir is required")
		pflag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("kilnctl: load config")
		}
		cfg = loaded
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	} else if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.WithError(err).Fatal("kilnctl: create catalog dir")
	}

	c, err := catalog.Open(*dir, cfg.DefaultIndexType)
	if err != nil {
		log.WithError(err).Fatal("kilnctl: open catalog")
	}
	defer c.Close()

	run(c, ast.ShowTables{})
	run(c, ast.CreateTable{
		Table: "widgets",
		Columns: []ast.ColumnDef{
			{Name: "id", Type: relation.ColInt},
			{Name: "sku", Type: relation.ColText},
			{Name: "in_stock", Type: relation.ColBoolean},
		},
	})
	run(c, ast.ShowColumns{Table: "widgets"})
	run(c, ast.CreateIndex{Index: "ix_sku", Table: "widgets", IndexColumns: []string{"sku"}})
	run(c, ast.ShowIndex{Table: "widgets"})
	run(c, ast.DropIndex{Index: "ix_sku", Table: "widgets"})
	run(c, ast.DropTable{Table: "widgets"})
}

func run(c *catalog.Catalog, stmt ast.Statement) {
	res, err := c.Execute(stmt)
	if err != nil {
		fmt.Printf("%T: error: %v\n", stmt, err)
		return
	}
	fmt.Printf("%T: %s\n", stmt, res.Message)
	for _, row := range res.Rows {
		fmt.Printf("  %v\n", row)
	}
}
