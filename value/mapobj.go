package value

import "strings"

// Map is a reference-shared container keyed by the string rendering of
// its keys (maps in Linh index by any value coerced to its canonical
// string form, so "m.a" reads and writes the same entry as "m["a"]").
// Insertion order is tracked separately so Keys/Values/String iterate
// deterministically, the way a programmer reading the source expects.
type Map struct {
	entries map[string]Value
	order   []string
}

func NewMap() *Map {
	return &Map{entries: make(map[string]Value)}
}

func keyText(key Value) string {
	return key.String()
}

func (m *Map) Get(key Value) (Value, bool) {
	v, ok := m.entries[keyText(key)]
	return v, ok
}

func (m *Map) Set(key Value, v Value) {
	k := keyText(key)
	if _, exists := m.entries[k]; !exists {
		m.order = append(m.order, k)
	}
	m.entries[k] = v
}

func (m *Map) Delete(key Value) bool {
	k := keyText(key)
	if _, ok := m.entries[k]; !ok {
		return false
	}
	delete(m.entries, k)
	for i, existing := range m.order {
		if existing == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *Map) Clear() {
	m.entries = make(map[string]Value)
	m.order = nil
}

func (m *Map) Len() int {
	return len(m.order)
}

func (m *Map) Clone() *Map {
	cloned := NewMap()
	for _, k := range m.order {
		cloned.order = append(cloned.order, k)
		cloned.entries[k] = m.entries[k]
	}
	return cloned
}

// Keys returns the map's keys, in insertion order, each boxed as a
// string Value (the only key representation the language surfaces).
func (m *Map) Keys() []Value {
	keys := make([]Value, len(m.order))
	for i, k := range m.order {
		keys[i] = String(k)
	}
	return keys
}

func (m *Map) Values() []Value {
	values := make([]Value, len(m.order))
	for i, k := range m.order {
		values[i] = m.entries[k]
	}
	return values
}

func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.order {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('"')
		sb.WriteString(k)
		sb.WriteString("\": ")
		v := m.entries[k]
		if v.Kind == KindString {
			sb.WriteByte('"')
			sb.WriteString(v.Str)
			sb.WriteByte('"')
		} else {
			sb.WriteString(v.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
