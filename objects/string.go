package objects

// String is the STRING value object. It has a single encoding (raw
// bytes), per spec §3's encoding table.
type String struct {
	value []byte
}

// NewString returns a String wrapping a copy of value.
func NewString(value []byte) *String {
	s := &String{}
	s.Set(value)
	return s
}

func (*String) Type() Type         { return TypeString }
func (*String) Encoding() string   { return "raw" }

// Get returns the current value. Callers must not mutate the
// returned slice.
func (s *String) Get() []byte {
	return s.value
}

// Set replaces the value with a copy of value.
func (s *String) Set(value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	s.value = cp
}

// Length returns the byte length of the value.
func (s *String) Length() int {
	return len(s.value)
}
