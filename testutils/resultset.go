package testutils

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/rewritecheck/resultset"
	"github.com/stretchr/testify/require"
)

const fieldSeparator = "|"

// ParseResultSet parses a result set written as a header line of
// `name:type` columns followed by one line per row, with fields separated by
// "|". Supported types are int, float, string, bool and date. NULL denotes a
// null value and double quoted strings keep surrounding whitespace.
//
//	id:int | name:string
//	1      | "a "
//	2      | NULL
func ParseResultSet(t *testing.T, input string) resultset.ResultSet {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(input), "\n")
	require.NotEmpty(t, lines)

	var cols []string
	var kinds []string
	for _, field := range splitFields(lines[0]) {
		if field == "" {
			continue
		}
		name, kind, ok := strings.Cut(field, ":")
		require.True(t, ok, "column %q must be of the form name:type", field)
		cols = append(cols, name)
		kinds = append(kinds, kind)
	}

	rows := make([]resultset.Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)
		require.Len(t, fields, len(cols), "row %q", line)
		row := make(resultset.Row, len(cols))
		for i, field := range fields {
			row[i] = parseValue(t, kinds[i], field)
		}
		rows = append(rows, row)
	}
	rs, err := resultset.New(cols, rows)
	require.NoError(t, err)
	return rs
}

func splitFields(line string) []string {
	fields := strings.Split(line, fieldSeparator)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func parseValue(t *testing.T, kind string, field string) resultset.Value {
	t.Helper()
	if field == "NULL" {
		return resultset.MakeNull()
	}
	switch kind {
	case "int":
		i, err := strconv.ParseInt(field, 10, 64)
		require.NoError(t, err)
		return resultset.MakeInt(i)
	case "float":
		f, err := strconv.ParseFloat(field, 64)
		require.NoError(t, err)
		return resultset.MakeFloat(f)
	case "bool":
		b, err := strconv.ParseBool(field)
		require.NoError(t, err)
		return resultset.MakeBool(b)
	case "date":
		d, err := time.Parse("2006-01-02", field)
		require.NoError(t, err)
		return resultset.MakeDate(d)
	case "string":
		if strings.HasPrefix(field, `"`) {
			s, err := strconv.Unquote(field)
			require.NoError(t, err)
			return resultset.MakeString(s)
		}
		return resultset.MakeString(field)
	case "any":
		// Infer the kind from the field itself, for mixed columns.
		if i, err := strconv.ParseInt(field, 10, 64); err == nil {
			return resultset.MakeInt(i)
		}
		if f, err := strconv.ParseFloat(field, 64); err == nil {
			return resultset.MakeFloat(f)
		}
		return resultset.MakeString(field)
	}
	t.Fatalf("unknown column type %q", kind)
	return resultset.Value{}
}

// FormatRows writes rows with the same separator ParseResultSet reads.
func FormatRows(columns []string, rows []resultset.Row) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(columns, " | "))
	sb.WriteString("\n")
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(v.String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
