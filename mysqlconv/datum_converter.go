// Package mysqlconv converts the text encoded values returned by the MySQL
// driver into result set values.
package mysqlconv

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/resultset"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	time.RFC3339Nano,
}

func ConvertRowValue(val []byte, typeName string) (resultset.Value, error) {
	if val == nil {
		return resultset.MakeNull(), nil
	}
	v := string(val)
	unsigned := strings.HasPrefix(strings.ToUpper(typeName), "UNSIGNED ")
	switch strings.TrimPrefix(strings.ToUpper(typeName), "UNSIGNED ") {
	case "BIT":
		var u uint64
		for _, b := range val {
			u = u<<8 | uint64(b)
		}
		return uintValue(u), nil
	case "DECIMAL", "NUMERIC":
		d, _, err := apd.NewFromString(v)
		if err != nil {
			return resultset.Value{}, errors.Wrapf(err, "error parsing decimal %q", v)
		}
		return resultset.MakeDecimal(d)
	}

	switch DatabaseTypeToKind(typeName) {
	case resultset.KindInt:
		if unsigned {
			u, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return resultset.Value{}, errors.Wrapf(err, "error parsing %s %q", typeName, v)
			}
			return uintValue(u), nil
		}
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return resultset.Value{}, errors.Wrapf(err, "error parsing %s %q", typeName, v)
		}
		return resultset.MakeInt(i), nil
	case resultset.KindFloat:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return resultset.Value{}, errors.Wrapf(err, "error parsing %s %q", typeName, v)
		}
		return resultset.MakeFloat(f), nil
	case resultset.KindBool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return resultset.Value{}, errors.Wrapf(err, "error parsing %s %q", typeName, v)
		}
		return resultset.MakeBool(b), nil
	case resultset.KindDate:
		// Zero dates are how MySQL spells "no date".
		if strings.HasPrefix(v, "0000-") {
			return resultset.MakeNull(), nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
				return resultset.MakeDate(t), nil
			}
		}
		return resultset.Value{}, errors.Newf("error parsing %s %q", typeName, v)
	case resultset.KindNull:
		return resultset.MakeNull(), nil
	}
	return resultset.MakeString(v), nil
}

func uintValue(u uint64) resultset.Value {
	if u > math.MaxInt64 {
		return resultset.MakeFloat(float64(u))
	}
	return resultset.MakeInt(int64(u))
}

func ConvertRowValues(vals [][]byte, typeNames []string) (resultset.Row, error) {
	if len(vals) != len(typeNames) {
		return nil, errors.AssertionFailedf("val length != type length: %v vs %v", vals, typeNames)
	}
	ret := make(resultset.Row, len(vals))
	for i := range vals {
		var err error
		if ret[i], err = ConvertRowValue(vals[i], typeNames[i]); err != nil {
			return nil, errors.Wrapf(err, "column %d", i)
		}
	}
	return ret, nil
}

// ScanRow reads the current row of rows, where the types cannot be declared
// upfront.
func ScanRow(rows *sql.Rows, typeNames []string) (resultset.Row, error) {
	raw := make([]sql.RawBytes, len(typeNames))
	dest := make([]any, len(raw))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	vals := make([][]byte, len(raw))
	for i, b := range raw {
		if b != nil {
			vals[i] = append([]byte{}, b...)
		}
	}
	return ConvertRowValues(vals, typeNames)
}
