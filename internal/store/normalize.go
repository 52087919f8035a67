package store

import (
	"math"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 date written for time values
const DateLayout = "2006-01-02"

// Normalize converts a value into a portable scalar (nil, bool, int64, float64, string).
// 싱크 경계에서 decimal/pgtype/time 같은 래퍼 타입이 새어 나가지 않도록 함
// ⭐ SSOT: 저장용 값 변환은 여기서만
func Normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return normalizeDecimal(x)
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return normalizeDecimal(*x)
	case decimal.NullDecimal:
		if !x.Valid {
			return nil
		}
		return normalizeDecimal(x.Decimal)
	case pgtype.Numeric:
		return normalizeNumeric(x)
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		return x.Time.Format(DateLayout)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x.Format(DateLayout)
	case *time.Time:
		if x == nil {
			return nil
		}
		return Normalize(*x)
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case *float64:
		if x == nil {
			return nil
		}
		return finite(*x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64, bool, string:
		return x
	}

	// 문자열 기반 열거형 (Grade, RiskLevel 등)
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	return v
}

func normalizeDecimal(d decimal.Decimal) interface{} {
	if d.IsInteger() {
		i := d.BigInt()
		if i.IsInt64() {
			return i.Int64()
		}
	}
	f, _ := d.Float64()
	return finite(f)
}

func normalizeNumeric(n pgtype.Numeric) interface{} {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return nil
	}
	return normalizeDecimal(decimal.NewFromBigInt(n.Int, n.Exp))
}

func finite(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
