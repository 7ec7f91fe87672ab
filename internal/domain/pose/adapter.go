package pose

import "math"

// Coordinates is implemented by detector result types that expose landmark
// fields through getters.
type Coordinates interface {
	GetX() float64
	GetY() float64
	GetZ() float64
	GetVisibility() float64
}

// tupleLen is the number of values in an ordered landmark tuple.
const tupleLen = 4

// Adapt resolves a loosely shaped landmark entry. Supported shapes are a
// Landmark, a Coordinates implementation, a map keyed by x, y, z and v (or
// visibility), and an ordered tuple of at least four numbers.
// The second result is false when the entry matched none of them.
func Adapt(entry any) (Landmark, bool) {
	switch v := entry.(type) {
	case Landmark:
		return v, true
	case *Landmark:
		if v == nil {
			return Landmark{}, false
		}

		return *v, true
	case Coordinates:
		return Landmark{X: v.GetX(), Y: v.GetY(), Z: v.GetZ(), Visibility: v.GetVisibility()}, true
	case map[string]float64:
		return fromMap(func(k string) (any, bool) {
			f, ok := v[k]
			return f, ok
		})
	case map[string]any:
		return fromMap(func(k string) (any, bool) {
			f, ok := v[k]
			return f, ok
		})
	case [4]float64:
		return Landmark{X: v[0], Y: v[1], Z: v[2], Visibility: v[3]}, true
	case [4]float32:
		return Landmark{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2]), Visibility: float64(v[3])}, true
	case []float64:
		if len(v) < tupleLen {
			return Landmark{}, false
		}

		return Landmark{X: v[0], Y: v[1], Z: v[2], Visibility: v[3]}, true
	case []float32:
		if len(v) < tupleLen {
			return Landmark{}, false
		}

		return Landmark{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2]), Visibility: float64(v[3])}, true
	case []any:
		return fromTuple(v)
	default:
		return Landmark{}, false
	}
}

// AdaptAll resolves every entry, substituting the zero landmark for entries
// of unrecognised shape so one bad point never drops the whole frame.
// A nil input yields nil, meaning no body.
func AdaptAll(entries []any) []Landmark {
	if entries == nil {
		return nil
	}

	landmarks := make([]Landmark, len(entries))
	for i, entry := range entries {
		if lm, ok := Adapt(entry); ok {
			landmarks[i] = lm
		}
	}

	return landmarks
}

// fromMap reads a landmark through a key lookup. Visibility accepts both the
// short "v" key and the long "visibility" key.
func fromMap(lookup func(string) (any, bool)) (Landmark, bool) {
	var values [tupleLen]float64

	for i, key := range [...]string{"x", "y", "z", "v"} {
		raw, ok := lookup(key)
		if !ok && key == "v" {
			raw, ok = lookup("visibility")
		}

		if !ok {
			return Landmark{}, false
		}

		f, ok := toFloat(raw)
		if !ok {
			return Landmark{}, false
		}

		values[i] = f
	}

	return Landmark{X: values[0], Y: values[1], Z: values[2], Visibility: values[3]}, true
}

// fromTuple reads the first four numeric elements of an untyped tuple.
func fromTuple(tuple []any) (Landmark, bool) {
	if len(tuple) < tupleLen {
		return Landmark{}, false
	}

	var values [tupleLen]float64

	for i := range tupleLen {
		f, ok := toFloat(tuple[i])
		if !ok {
			return Landmark{}, false
		}

		values[i] = f
	}

	return Landmark{X: values[0], Y: values[1], Z: values[2], Visibility: values[3]}, true
}

// toFloat coerces the numeric kinds produced by decoders to float64.
func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
