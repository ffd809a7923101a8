package flags

// Bits is the set of fixed-width representations a flag value may use. Every
// operation in this package is closed over one concrete type, so mixing widths
// is rejected at compile time.
type Bits interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func Or[T Bits](a, b T) T { return a | b }

func And[T Bits](a, b T) T { return a & b }

func Xor[T Bits](a, b T) T { return a ^ b }

func Not[T Bits](a T) T { return ^a }

// Has reports whether every bit of bit is set in v.
func Has[T Bits](v, bit T) bool {
	return v&bit == bit
}
