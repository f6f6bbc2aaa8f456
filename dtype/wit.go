package dtype

import "go.bytecodealliance.org/wit"

// FromWIT returns the data type that stores one value of the WIT primitive t.
// Only bool, the 8/16/32-bit integers, f32 and f64 have a sample type.
func FromWIT(t wit.Type) (DataType, bool) {
	switch t.(type) {
	case wit.Bool:
		return Bin, true
	case wit.U8:
		return UInt8, true
	case wit.S8:
		return SInt8, true
	case wit.U16:
		return UInt16, true
	case wit.S16:
		return SInt16, true
	case wit.U32:
		return UInt32, true
	case wit.S32:
		return SInt32, true
	case wit.F32:
		return SFloat, true
	case wit.F64:
		return DFloat, true
	default:
		return 0, false
	}
}

// WIT returns the WIT primitive type with the same representation as d.
// Complex types have no WIT equivalent.
func (d DataType) WIT() (wit.Type, bool) {
	switch d {
	case Bin:
		return wit.Bool{}, true
	case UInt8:
		return wit.U8{}, true
	case SInt8:
		return wit.S8{}, true
	case UInt16:
		return wit.U16{}, true
	case SInt16:
		return wit.S16{}, true
	case UInt32:
		return wit.U32{}, true
	case SInt32:
		return wit.S32{}, true
	case SFloat:
		return wit.F32{}, true
	case DFloat:
		return wit.F64{}, true
	default:
		return nil, false
	}
}
