package dtype

// isDouble reports whether samples of d need double precision to be
// represented exactly in floating point.
func isDouble(d DataType) bool {
	switch d {
	case UInt32, SInt32, DFloat, DComplex:
		return true
	}
	return false
}

// SuggestInteger returns an integer type that can hold samples of d.
// Floating-point and complex types map to SInt32, binary to UInt8.
func SuggestInteger(d DataType) DataType {
	switch d {
	case Bin:
		return UInt8
	case SFloat, DFloat, SComplex, DComplex:
		return SInt32
	}
	return d
}

// SuggestSigned returns a signed type that can hold samples of d.
func SuggestSigned(d DataType) DataType {
	switch d {
	case Bin:
		return SInt8
	case UInt8:
		return SInt16
	case UInt16, UInt32:
		return SInt32
	}
	return d
}

// SuggestFloat returns a floating-point type for computations on d.
// Complex types map to their real counterpart.
func SuggestFloat(d DataType) DataType {
	if isDouble(d) {
		return DFloat
	}
	return SFloat
}

// SuggestComplex returns a complex type for computations on d.
func SuggestComplex(d DataType) DataType {
	if isDouble(d) {
		return DComplex
	}
	return SComplex
}

// SuggestFlex returns a floating-point or complex type for d.
func SuggestFlex(d DataType) DataType {
	if d.IsComplex() {
		return d
	}
	return SuggestFloat(d)
}

// SuggestFlexBin is SuggestFlex but keeps binary as binary.
func SuggestFlexBin(d DataType) DataType {
	if d.IsBinary() {
		return d
	}
	return SuggestFlex(d)
}

// SuggestAbs returns the type of the absolute value of samples of d.
func SuggestAbs(d DataType) DataType {
	switch d {
	case SInt8:
		return UInt8
	case SInt16:
		return UInt16
	case SInt32:
		return UInt32
	case SComplex:
		return SFloat
	case DComplex:
		return DFloat
	}
	return d
}

// SuggestArithmetic returns a flex type suitable for arithmetic between
// samples of a and b.
func SuggestArithmetic(a, b DataType) DataType {
	double := isDouble(a) || isDouble(b)
	if a.IsComplex() || b.IsComplex() {
		if double {
			return DComplex
		}
		return SComplex
	}
	if double {
		return DFloat
	}
	return SFloat
}

// SuggestDyadicOperation returns the smallest type that can hold the
// samples of both a and b.
func SuggestDyadicOperation(a, b DataType) DataType {
	switch {
	case a == b:
		return a
	case a.IsBinary():
		return b
	case b.IsBinary():
		return a
	case a.IsInteger() && b.IsInteger():
		return promoteIntegers(a, b)
	}
	return SuggestArithmetic(a, b)
}

func promoteIntegers(a, b DataType) DataType {
	if a.IsUInt() == b.IsUInt() {
		if a.Size() >= b.Size() {
			return a
		}
		return b
	}
	u, s := a, b
	if !u.IsUInt() {
		u, s = b, a
	}
	size := s.Size()
	if u.Size() >= size {
		size = 2 * u.Size()
	}
	switch {
	case size <= 1:
		return SInt8
	case size <= 2:
		return SInt16
	default:
		return SInt32
	}
}
