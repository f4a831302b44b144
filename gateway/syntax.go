package gateway

import (
	"github.com/cockroachdb/cockroachdb-parser/pkg/sql/parser"
	"github.com/cockroachdb/cockroachdb-parser/pkg/sql/sem/tree"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/dbconn"
	tidbparser "github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/types/parser_driver"
)

// CheckSyntax parses query with the parser of dialect. The query must be a
// single statement that returns rows.
func CheckSyntax(dialect dbconn.Dialect, query string) error {
	switch dialect {
	case dbconn.DialectPostgreSQL, dbconn.DialectCockroachDB:
		return checkPGSyntax(query)
	case dbconn.DialectMySQL:
		return checkMySQLSyntax(query)
	}
	return errors.AssertionFailedf("no parser for dialect %q", dialect)
}

func checkPGSyntax(query string) error {
	stmts, err := parser.Parse(query)
	if err != nil {
		return err
	}
	if len(stmts) != 1 {
		return errors.Newf("expected exactly one statement, got %d", len(stmts))
	}
	switch stmt := stmts[0].AST.(type) {
	case *tree.Select, *tree.ParenSelect:
		return nil
	default:
		return errors.Newf("expected a query returning rows, got %s", stmt.StatementTag())
	}
}

func checkMySQLSyntax(query string) error {
	p := tidbparser.New()
	stmts, _, err := p.Parse(query, "", "")
	if err != nil {
		return err
	}
	if len(stmts) != 1 {
		return errors.Newf("expected exactly one statement, got %d", len(stmts))
	}
	switch stmts[0].(type) {
	case *ast.SelectStmt, *ast.SetOprStmt:
		return nil
	default:
		return errors.Newf("expected a query returning rows, got %T", stmts[0])
	}
}
