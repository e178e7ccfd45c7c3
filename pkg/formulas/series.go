package formulas

import (
	"encoding/json"
	"fmt"
)

// ToSeries converts a decoded sequence into a flat float64 series.
//
// Accepted elements are Go integer and float kinds and json.Number. Anything
// else (nil, strings, booleans, nested arrays, objects) fails with an error
// wrapping ErrInvalidInput, naming the offending index.
func ToSeries(raw []interface{}) ([]float64, error) {
	series := make([]float64, len(raw))
	for i, v := range raw {
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidInput, i, err)
		}
		series[i] = f
	}
	return series, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("null value")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
