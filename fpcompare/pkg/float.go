package fpcompare

import (
	"encoding/json"
	"math"
)

// Float marshals NaN and infinities as the strings "NaN", "Inf" and "-Inf",
// which encoding/json otherwise refuses.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	x := float64(f)
	if math.IsNaN(x) {
		return []byte(`"NaN"`), nil
	}
	if math.IsInf(x, -1) {
		return []byte(`"-Inf"`), nil
	}
	if math.IsInf(x, 1) {
		return []byte(`"Inf"`), nil
	}
	return json.Marshal(x)
}

func (f *Float) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"NaN"`:
		*f = Float(math.NaN())
	case `"Inf"`:
		*f = Float(math.Inf(1))
	case `"-Inf"`:
		*f = Float(math.Inf(-1))
	default:
		var x float64
		if e := json.Unmarshal(b, &x); e != nil {
			return e
		}
		*f = Float(x)
	}
	return nil
}
