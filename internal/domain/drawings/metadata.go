package drawings

import "sort"

// Metadata is an open key/value document attached to a drawing.
type Metadata map[string]string

// Clone returns a non-nil copy.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m Metadata) Equal(other Metadata) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Keys returns the keys in ascending order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SubsetOf reports whether every key of m exists in other.
func (m Metadata) SubsetOf(other Metadata) bool {
	for k := range m {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}
