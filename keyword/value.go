package keyword

// Value is a materialized record payload. The zero Value is a MESS
// payload with no elements.
type Value struct {
	typ  Type
	data any
}

// NewChars creates a CHAR payload.
func NewChars(vs []string) Value { return Value{typ: CHAR, data: vs} }

// NewInts creates an INTE payload.
func NewInts(vs []int32) Value { return Value{typ: INTE, data: vs} }

// NewReals creates a REAL payload.
func NewReals(vs []float32) Value { return Value{typ: REAL, data: vs} }

// NewDoubles creates a DOUB payload.
func NewDoubles(vs []float64) Value { return Value{typ: DOUB, data: vs} }

// NewLogicals creates a LOGI payload.
func NewLogicals(vs []bool) Value { return Value{typ: LOGI, data: vs} }

// NewMessage creates an empty MESS payload.
func NewMessage() Value { return Value{typ: MESS} }

// Type returns the element type of the payload.
func (v Value) Type() Type { return v.typ }

// Len returns the number of elements in the payload.
func (v Value) Len() int {
	switch d := v.data.(type) {
	case []string:
		return len(d)
	case []int32:
		return len(d)
	case []float32:
		return len(d)
	case []float64:
		return len(d)
	case []bool:
		return len(d)
	default:
		return 0
	}
}

// Chars returns the CHAR elements, or false if the payload is not CHAR.
func (v Value) Chars() ([]string, bool) {
	d, ok := v.data.([]string)
	return d, ok
}

// Ints returns the INTE elements, or false if the payload is not INTE.
func (v Value) Ints() ([]int32, bool) {
	d, ok := v.data.([]int32)
	return d, ok
}

// Reals returns the REAL elements, or false if the payload is not REAL.
func (v Value) Reals() ([]float32, bool) {
	d, ok := v.data.([]float32)
	return d, ok
}

// Doubles returns the DOUB elements, or false if the payload is not DOUB.
func (v Value) Doubles() ([]float64, bool) {
	d, ok := v.data.([]float64)
	return d, ok
}

// Logicals returns the LOGI elements, or false if the payload is not LOGI.
func (v Value) Logicals() ([]bool, bool) {
	d, ok := v.data.([]bool)
	return d, ok
}
