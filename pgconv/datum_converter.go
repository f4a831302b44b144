// Package pgconv converts values decoded by pgx into result set values.
package pgconv

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/rewritecheck/resultset"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq/oid"
)

func ConvertRowValue(val any, typOID oid.Oid) (resultset.Value, error) {
	if val == nil {
		return resultset.MakeNull(), nil
	}
	// Infinite dates and timestamps have no time.Time representation.
	if inf, ok := val.(pgtype.InfinityModifier); ok {
		return resultset.MakeString(inf.String()), nil
	}

	switch typOID {
	case pgtype.BoolOID:
		return resultset.MakeBool(val.(bool)), nil
	case pgtype.QCharOID:
		return resultset.MakeString(fmt.Sprintf("%c", val.(int32))), nil
	case pgtype.VarcharOID, pgtype.TextOID, pgtype.BPCharOID, pgtype.NameOID:
		return resultset.MakeString(val.(string)), nil
	case pgtype.Float4OID:
		return resultset.MakeFloat(float64(val.(float32))), nil
	case pgtype.Float8OID:
		return resultset.MakeFloat(val.(float64)), nil
	case pgtype.Int2OID:
		return resultset.MakeInt(int64(val.(int16))), nil
	case pgtype.Int4OID:
		return resultset.MakeInt(int64(val.(int32))), nil
	case pgtype.Int8OID:
		return resultset.MakeInt(val.(int64)), nil
	case pgtype.OIDOID:
		return resultset.MakeInt(int64(val.(uint32))), nil
	case pgtype.NumericOID:
		return convertNumeric(val.(pgtype.Numeric))
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return resultset.MakeDate(val.(time.Time)), nil
	case pgtype.TimeOID:
		us := val.(pgtype.Time).Microseconds
		d := time.Duration(us) * time.Microsecond
		return resultset.MakeString(fmt.Sprintf(
			"%02d:%02d:%02d.%06d",
			int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60, us%1000000,
		)), nil
	case pgtype.UUIDOID:
		return resultset.MakeString(uuid.UUID(val.([16]uint8)).String()), nil
	case pgtype.JSONOID, pgtype.JSONBOID:
		// Re-encoding sorts object keys, so equal documents compare equal.
		b, err := json.Marshal(val)
		if err != nil {
			return resultset.Value{}, errors.Wrapf(err, "error encoding json for %v", val)
		}
		return resultset.MakeString(string(b)), nil
	case pgtype.ByteaOID:
		return resultset.MakeString(`\x` + hex.EncodeToString(val.([]byte))), nil
	}

	switch val := val.(type) {
	case string:
		// Enums and other user defined types decode as text.
		return resultset.MakeString(val), nil
	case fmt.Stringer:
		return resultset.MakeString(val.String()), nil
	}
	return resultset.Value{}, errors.AssertionFailedf("value %v (%T) of type OID %d not yet translatable", val, val, typOID)
}

func convertNumeric(val pgtype.Numeric) (resultset.Value, error) {
	if !val.Valid {
		return resultset.MakeNull(), nil
	}
	if val.NaN {
		return resultset.MakeFloat(math.NaN()), nil
	}
	switch val.InfinityModifier {
	case pgtype.Infinity:
		return resultset.MakeFloat(math.Inf(1)), nil
	case pgtype.NegativeInfinity:
		return resultset.MakeFloat(math.Inf(-1)), nil
	}
	d := apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(val.Int), val.Exp)
	return resultset.MakeDecimal(d)
}

func ConvertRowValues(vals []any, typOIDs []oid.Oid) (resultset.Row, error) {
	if len(vals) != len(typOIDs) {
		return nil, errors.AssertionFailedf("val length != oid length: %v vs %v", vals, typOIDs)
	}
	ret := make(resultset.Row, len(vals))
	for i := range vals {
		var err error
		if ret[i], err = ConvertRowValue(vals[i], typOIDs[i]); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
