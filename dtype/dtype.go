package dtype

import (
	"fmt"
	"strings"

	"github.com/yaoyutaoTom/diplib/errors"
)

// DataType identifies the kind of one image sample.
type DataType uint8

const (
	Bin DataType = iota
	UInt8
	SInt8
	UInt16
	SInt16
	UInt32
	SInt32
	SFloat
	DFloat
	SComplex
	DComplex

	numTypes
)

type traits struct {
	name  string
	size  int
	class Classes
}

var table = [numTypes]traits{
	Bin:      {name: "BIN", size: 1, class: ClassBin},
	UInt8:    {name: "UINT8", size: 1, class: ClassUInt8},
	SInt8:    {name: "SINT8", size: 1, class: ClassSInt8},
	UInt16:   {name: "UINT16", size: 2, class: ClassUInt16},
	SInt16:   {name: "SINT16", size: 2, class: ClassSInt16},
	UInt32:   {name: "UINT32", size: 4, class: ClassUInt32},
	SInt32:   {name: "SINT32", size: 4, class: ClassSInt32},
	SFloat:   {name: "SFLOAT", size: 4, class: ClassSFloat},
	DFloat:   {name: "DFLOAT", size: 8, class: ClassDFloat},
	SComplex: {name: "SCOMPLEX", size: 8, class: ClassSComplex},
	DComplex: {name: "DCOMPLEX", size: 16, class: ClassDComplex},
}

// All lists every data type in tag order.
func All() []DataType {
	out := make([]DataType, numTypes)
	for i := range out {
		out[i] = DataType(i)
	}
	return out
}

// Valid reports whether d is one of the defined data types.
func (d DataType) Valid() bool {
	return d < numTypes
}

// Size returns the byte size of one sample of this type.
// It returns 0 for an invalid tag.
func (d DataType) Size() int {
	if !d.Valid() {
		return 0
	}
	return table[d].size
}

// Name returns the canonical upper-case name, e.g. "SFLOAT".
func (d DataType) Name() string {
	if !d.Valid() {
		return fmt.Sprintf("DataType(%d)", uint8(d))
	}
	return table[d].name
}

// String returns the canonical name.
func (d DataType) String() string {
	return d.Name()
}

// Parse returns the data type with the given name. Matching is case-insensitive.
func Parse(name string) (DataType, error) {
	upper := strings.ToUpper(name)
	for i, t := range table {
		if t.name == upper {
			return DataType(i), nil
		}
	}
	return 0, errors.New(errors.PhaseDataType, errors.KindInvalidInput).
		Value(name).
		Detail("illegal data type name %q", name).
		Build()
}

// Class returns the singleton class set of d.
func (d DataType) Class() Classes {
	if !d.Valid() {
		return 0
	}
	return table[d].class
}

func (d DataType) IsBinary() bool   { return ClassBinary.Contains(d) }
func (d DataType) IsUInt() bool     { return ClassUInt.Contains(d) }
func (d DataType) IsSInt() bool     { return ClassSInt.Contains(d) }
func (d DataType) IsInteger() bool  { return ClassInteger.Contains(d) }
func (d DataType) IsFloat() bool    { return ClassFloat.Contains(d) }
func (d DataType) IsReal() bool     { return ClassReal.Contains(d) }
func (d DataType) IsComplex() bool  { return ClassComplex.Contains(d) }
func (d DataType) IsUnsigned() bool { return ClassUnsigned.Contains(d) }
func (d DataType) IsSigned() bool   { return ClassSigned.Contains(d) }

// Real returns the type of the real or imaginary component of a complex
// type. Non-complex types are returned unchanged.
func (d DataType) Real() DataType {
	switch d {
	case SComplex:
		return SFloat
	case DComplex:
		return DFloat
	default:
		return d
	}
}
