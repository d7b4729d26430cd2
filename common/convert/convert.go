package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

var errUnhandledType = errors.New("unhandled type")

// BoolPtr takes in boolean condition and returns pointer version of it
func BoolPtr(condition bool) *bool {
	b := condition
	return &b
}

// NullDecimalFromValue converts a loosely typed value, as found in decoded
// key-value payloads, into a nullable decimal. A nil value or an empty string
// yields an invalid (unset) NullDecimal
func NullDecimalFromValue(raw interface{}) (decimal.NullDecimal, error) {
	var d decimal.Decimal
	switch v := raw.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case decimal.NullDecimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.NullDecimal{}, nil
		}
		d = *v
	case decimal.Decimal:
		d = v
	case float64:
		d = decimal.NewFromFloat(v)
	case float32:
		d = decimal.NewFromFloat32(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int32:
		d = decimal.NewFromInt32(v)
	case int64:
		d = decimal.NewFromInt(v)
	case uint:
		d = decimal.NewFromInt(int64(v))
	case json.Number:
		var err error
		d, err = decimal.NewFromString(v.String())
		if err != nil {
			return decimal.NullDecimal{}, err
		}
	case string:
		if v == "" {
			return decimal.NullDecimal{}, nil
		}
		var err error
		d, err = decimal.NewFromString(v)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
	default:
		return decimal.NullDecimal{}, fmt.Errorf("%w %T", errUnhandledType, raw)
	}
	return decimal.NewNullDecimal(d), nil
}

// StringFromValue converts a loosely typed value into a string. Nil yields an
// empty string
func StringFromValue(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w %T", errUnhandledType, raw)
	}
}
