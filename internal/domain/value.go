package domain

import (
	"encoding/json"
	"math"
)

// Value is a metric reading. NaN marks a missing reading.
//
// It encodes to JSON as a number, or null when missing, so that rows with gaps
// survive serialization (encoding/json rejects NaN).
type Value float64

// Missing returns the missing-value sentinel.
func Missing() Value {
	return Value(math.NaN())
}

// Valid reports whether v holds a finite reading.
func (v Value) Valid() bool {
	return isFinite(float64(v))
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(v))
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
