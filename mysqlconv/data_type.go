package mysqlconv

import (
	"strings"

	"github.com/cockroachdb/rewritecheck/resultset"
)

// DatabaseTypeToKind maps a column's database type name, as reported by
// (*sql.ColumnType).DatabaseTypeName, to the kind its values convert to.
// Types without a numeric, boolean or temporal reading compare as strings.
func DatabaseTypeToKind(typeName string) resultset.Kind {
	typeName = strings.TrimPrefix(strings.ToUpper(typeName), "UNSIGNED ")
	switch typeName {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR", "BIT":
		return resultset.KindInt
	case "DECIMAL", "NUMERIC":
		// Integral decimals become ints, see ConvertRowValue.
		return resultset.KindFloat
	case "FLOAT", "DOUBLE", "REAL":
		return resultset.KindFloat
	case "DATE", "DATETIME", "TIMESTAMP":
		return resultset.KindDate
	case "BOOL", "BOOLEAN":
		return resultset.KindBool
	case "NULL":
		return resultset.KindNull
	default:
		return resultset.KindString
	}
}
