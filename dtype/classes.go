package dtype

import "strings"

// Classes is a set of data types.
type Classes uint16

const (
	ClassBin      Classes = 1 << Bin
	ClassUInt8    Classes = 1 << UInt8
	ClassSInt8    Classes = 1 << SInt8
	ClassUInt16   Classes = 1 << UInt16
	ClassSInt16   Classes = 1 << SInt16
	ClassUInt32   Classes = 1 << UInt32
	ClassSInt32   Classes = 1 << SInt32
	ClassSFloat   Classes = 1 << SFloat
	ClassDFloat   Classes = 1 << DFloat
	ClassSComplex Classes = 1 << SComplex
	ClassDComplex Classes = 1 << DComplex

	ClassBinary     = ClassBin
	ClassUInt       = ClassUInt8 | ClassUInt16 | ClassUInt32
	ClassSInt       = ClassSInt8 | ClassSInt16 | ClassSInt32
	ClassInteger    = ClassUInt | ClassSInt
	ClassIntOrBin   = ClassInteger | ClassBinary
	ClassFloat      = ClassSFloat | ClassDFloat
	ClassReal       = ClassInteger | ClassFloat
	ClassComplex    = ClassSComplex | ClassDComplex
	ClassFlex       = ClassFloat | ClassComplex
	ClassFlexBin    = ClassFlex | ClassBinary
	ClassUnsigned   = ClassBinary | ClassUInt
	ClassSigned     = ClassSInt | ClassFloat | ClassComplex
	ClassNonBinary  = ClassReal | ClassComplex
	ClassNonComplex = ClassBinary | ClassReal
	ClassAny        = ClassBinary | ClassReal | ClassComplex
)

// Contains reports whether d is a member of the set.
func (c Classes) Contains(d DataType) bool {
	return c&d.Class() != 0
}

// Types lists the members of the set in tag order.
func (c Classes) Types() []DataType {
	var out []DataType
	for i := DataType(0); i < numTypes; i++ {
		if c.Contains(i) {
			out = append(out, i)
		}
	}
	return out
}

// String lists member names joined by '|'.
func (c Classes) String() string {
	types := c.Types()
	if len(types) == 0 {
		return "{}"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return strings.Join(names, "|")
}
