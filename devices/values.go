package devices

import "math"

// normalizeMap deep copies pass-through data, converting every integer to int where it fits.
// Source files and index snapshots decode integers into different kinds, after normalisation
// both yield identical values.
func normalizeMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))

	for k, v := range in {
		out[k] = normalizeValue(v)
	}

	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, v := range t {
			out[normalizeValue(k)] = normalizeValue(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = normalizeValue(v)
		}
		return out
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		if t >= math.MinInt && t <= math.MaxInt {
			return int(t)
		}
	case uint:
		if t <= math.MaxInt {
			return int(t)
		}
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		if uint64(t) <= math.MaxInt {
			return int(t)
		}
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}
	}

	return v
}
