package mysqlconv

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/rewritecheck/resultset"
	"github.com/stretchr/testify/require"
)

func TestDatabaseTypeToKind(t *testing.T) {
	for typeName, expected := range map[string]resultset.Kind{
		"INT":             resultset.KindInt,
		"UNSIGNED BIGINT": resultset.KindInt,
		"decimal":         resultset.KindFloat,
		"DOUBLE":          resultset.KindFloat,
		"DATETIME":        resultset.KindDate,
		"VARCHAR":         resultset.KindString,
		"JSON":            resultset.KindString,
		"TIME":            resultset.KindString,
	} {
		t.Run(typeName, func(t *testing.T) {
			require.Equal(t, expected, DatabaseTypeToKind(typeName))
		})
	}
}

func TestConvertRowValue(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		val      []byte
		typeName string
		expected resultset.Value
	}{
		{desc: "null", val: nil, typeName: "INT", expected: resultset.MakeNull()},
		{desc: "int", val: []byte("-12"), typeName: "INT", expected: resultset.MakeInt(-12)},
		{
			desc:     "unsigned overflow",
			val:      []byte("18446744073709551615"),
			typeName: "UNSIGNED BIGINT",
			expected: resultset.MakeFloat(math.MaxUint64),
		},
		{desc: "double", val: []byte("1.5"), typeName: "DOUBLE", expected: resultset.MakeFloat(1.5)},
		{desc: "decimal", val: []byte("10.25"), typeName: "DECIMAL", expected: resultset.MakeFloat(10.25)},
		{desc: "integral decimal", val: []byte("10"), typeName: "DECIMAL", expected: resultset.MakeInt(10)},
		{desc: "bit", val: []byte{0x01, 0x02}, typeName: "BIT", expected: resultset.MakeInt(258)},
		{desc: "year", val: []byte("2021"), typeName: "YEAR", expected: resultset.MakeInt(2021)},
		{
			desc:     "date",
			val:      []byte("2021-03-04"),
			typeName: "DATE",
			expected: resultset.MakeDate(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)),
		},
		{
			desc:     "datetime",
			val:      []byte("2021-03-04 05:06:07.5"),
			typeName: "DATETIME",
			expected: resultset.MakeDate(time.Date(2021, 3, 4, 5, 6, 7, 500000000, time.UTC)),
		},
		{desc: "zero date", val: []byte("0000-00-00 00:00:00"), typeName: "TIMESTAMP", expected: resultset.MakeNull()},
		{desc: "varchar", val: []byte("abc"), typeName: "VARCHAR", expected: resultset.MakeString("abc")},
		{desc: "time", val: []byte("12:00:01"), typeName: "TIME", expected: resultset.MakeString("12:00:01")},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			v, err := ConvertRowValue(tc.val, tc.typeName)
			require.NoError(t, err)
			require.Equal(t, tc.expected.Kind(), v.Kind())
			require.True(t, tc.expected.Equal(v), "expected %s, got %s", tc.expected, v)
		})
	}
}

func TestConvertRowValueErrors(t *testing.T) {
	for _, tc := range []struct {
		val      string
		typeName string
	}{
		{val: "x", typeName: "INT"},
		{val: "1.2.3", typeName: "DOUBLE"},
		{val: "garbage", typeName: "DECIMAL"},
		{val: "2021-13-45", typeName: "DATE"},
	} {
		t.Run(tc.typeName, func(t *testing.T) {
			_, err := ConvertRowValue([]byte(tc.val), tc.typeName)
			require.Error(t, err)
		})
	}
}
