package market

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	changeScale  = 8
	percentScale = 4
)

var hundred = decimal.NewFromInt(100)

// Finite reports whether f is a usable number.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Num converts a JSON value to a float. Numeric strings are accepted; anything
// else, including null and missing values, yields NaN.
func Num(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		if Finite(r.Num) {
			return r.Num
		}
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err == nil && Finite(f) {
			return f
		}
	}
	return math.NaN()
}

// FirstNum returns Num of the first value that is present and not null.
func FirstNum(results ...gjson.Result) float64 {
	for _, r := range results {
		if r.Exists() && r.Type != gjson.Null {
			return Num(r)
		}
	}
	return math.NaN()
}

// Field looks up keys on obj in order, treating them as literal member names
// so keys containing spaces or dots need no escaping.
func Field(obj gjson.Result, keys ...string) gjson.Result {
	if !obj.IsObject() {
		return gjson.Result{}
	}
	members := obj.Map()
	for _, key := range keys {
		if v, ok := members[key]; ok && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// Nullable maps NaN and infinities to JSON null.
func Nullable(f float64) null.Float {
	if !Finite(f) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// NullableSlice maps a series to nullable values.
func NullableSlice(values []float64) []null.Float {
	out := make([]null.Float, len(values))
	for i, v := range values {
		out[i] = Nullable(v)
	}
	return out
}

// Positive reports whether f is finite and greater than zero.
func Positive(f float64) bool {
	return Finite(f) && f > 0
}

// Derive computes change and percent change from price and previous close.
// Either result is NaN when it cannot be derived.
func Derive(price, prevClose float64) (change, percent float64) {
	if !Finite(price) || !Finite(prevClose) {
		return math.NaN(), math.NaN()
	}
	diff := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(prevClose))
	change, _ = diff.Round(changeScale).Float64()
	if prevClose <= 0 {
		return change, math.NaN()
	}
	percent, _ = diff.Div(decimal.NewFromFloat(prevClose)).Mul(hundred).Round(percentScale).Float64()
	return change, percent
}

// RoundPercent applies the percent rounding policy to a provider-supplied value.
func RoundPercent(p float64) float64 {
	if !Finite(p) {
		return math.NaN()
	}
	out, _ := decimal.NewFromFloat(p).Round(percentScale).Float64()
	return out
}

// RoundChange applies the change rounding policy to a provider-supplied value.
func RoundChange(c float64) float64 {
	if !Finite(c) {
		return math.NaN()
	}
	out, _ := decimal.NewFromFloat(c).Round(changeScale).Float64()
	return out
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
}

// ParseTimestamp converts a provider date or epoch value to Unix seconds.
// Epoch values above 1e12 are treated as milliseconds.
func ParseTimestamp(r gjson.Result) (int64, bool) {
	switch r.Type {
	case gjson.Number:
		return epochSeconds(r.Num)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epochSeconds(f)
		}
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.Unix(), true
			}
		}
	}
	return 0, false
}

func epochSeconds(f float64) (int64, bool) {
	if !Finite(f) {
		return 0, false
	}
	if f > 1e12 {
		f /= 1000
	}
	return int64(math.Floor(f)), true
}
