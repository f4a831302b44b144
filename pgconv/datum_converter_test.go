package pgconv

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/cockroachdb/rewritecheck/resultset"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func TestConvertRowValue(t *testing.T) {
	ts := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	for _, tc := range []struct {
		desc     string
		val      any
		oid      oid.Oid
		expected resultset.Value
	}{
		{desc: "null", val: nil, oid: oid.T_int8, expected: resultset.MakeNull()},
		{desc: "bool", val: true, oid: oid.T_bool, expected: resultset.MakeBool(true)},
		{desc: "int2", val: int16(3), oid: oid.T_int2, expected: resultset.MakeInt(3)},
		{desc: "int4", val: int32(-4), oid: oid.T_int4, expected: resultset.MakeInt(-4)},
		{desc: "int8", val: int64(5), oid: oid.T_int8, expected: resultset.MakeInt(5)},
		{desc: "float4", val: float32(1.5), oid: oid.T_float4, expected: resultset.MakeFloat(1.5)},
		{desc: "float8", val: 2.25, oid: oid.T_float8, expected: resultset.MakeFloat(2.25)},
		{desc: "text", val: "abc", oid: oid.T_text, expected: resultset.MakeString("abc")},
		{desc: "char", val: int32('x'), oid: oid.T_char, expected: resultset.MakeString("x")},
		{desc: "timestamp", val: ts, oid: oid.T_timestamp, expected: resultset.MakeDate(ts)},
		{desc: "date", val: ts, oid: oid.T_date, expected: resultset.MakeDate(ts)},
		{
			desc:     "infinite date",
			val:      pgtype.Infinity,
			oid:      oid.T_date,
			expected: resultset.MakeString("infinity"),
		},
		{
			desc:     "time",
			val:      pgtype.Time{Microseconds: (13*3600+4*60+5)*1000000 + 12, Valid: true},
			oid:      oid.T_time,
			expected: resultset.MakeString("13:04:05.000012"),
		},
		{
			desc:     "uuid",
			val:      [16]uint8{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
			oid:      oid.T_uuid,
			expected: resultset.MakeString("deadbeef-0000-0000-0000-000000000001"),
		},
		{
			desc:     "jsonb",
			val:      map[string]any{"b": 1, "a": []any{"x"}},
			oid:      oid.T_jsonb,
			expected: resultset.MakeString(`{"a":["x"],"b":1}`),
		},
		{desc: "bytea", val: []byte{0x01, 0xab}, oid: oid.T_bytea, expected: resultset.MakeString(`\x01ab`)},
		{
			desc:     "numeric fraction",
			val:      pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true},
			oid:      oid.T_numeric,
			expected: resultset.MakeFloat(123.45),
		},
		{
			desc:     "numeric integral",
			val:      pgtype.Numeric{Int: big.NewInt(12), Exp: 2, Valid: true},
			oid:      oid.T_numeric,
			expected: resultset.MakeInt(1200),
		},
		{
			desc:     "numeric infinity",
			val:      pgtype.Numeric{InfinityModifier: pgtype.NegativeInfinity, Valid: true},
			oid:      oid.T_numeric,
			expected: resultset.MakeFloat(math.Inf(-1)),
		},
		{desc: "enum", val: "happy", oid: oid.Oid(100000), expected: resultset.MakeString("happy")},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			v, err := ConvertRowValue(tc.val, tc.oid)
			require.NoError(t, err)
			require.True(t, tc.expected.Equal(v), "expected %s, got %s", tc.expected, v)
			require.Equal(t, tc.expected.Kind(), v.Kind())
		})
	}
}

func TestConvertRowValueNaN(t *testing.T) {
	v, err := ConvertRowValue(pgtype.Numeric{NaN: true, Valid: true}, oid.T_numeric)
	require.NoError(t, err)
	require.True(t, math.IsNaN(v.Float()))
}

func TestConvertRowValueUnsupported(t *testing.T) {
	_, err := ConvertRowValue(struct{}{}, oid.Oid(100000))
	require.Error(t, err)
}

func TestConvertRowValuesLengthMismatch(t *testing.T) {
	_, err := ConvertRowValues([]any{int64(1)}, nil)
	require.Error(t, err)
}
