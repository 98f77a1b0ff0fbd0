package meshcop

import "encoding/binary"

// Type identifies a MeshCoP TLV.
type Type uint8

// MeshCoP TLV types (Thread 1.1 Section 8.10.1).
const (
	TypeSteeringData          Type = 8
	TypeBorderAgentLocator    Type = 9
	TypeCommissionerID        Type = 10
	TypeCommissionerSessionID Type = 11
	TypeJoinerUDPPort         Type = 18
	TypeState                 Type = 16
	TypeProvisioningURL       Type = 32
	TypeVendorName            Type = 33
	TypeVendorModel           Type = 34
	TypeVendorSWVersion       Type = 35
	TypeVendorData            Type = 36
	TypeVendorStackVersion    Type = 37
)

// String returns the TLV type name.
func (t Type) String() string {
	switch t {
	case TypeSteeringData:
		return "SteeringData"
	case TypeBorderAgentLocator:
		return "BorderAgentLocator"
	case TypeCommissionerID:
		return "CommissionerID"
	case TypeCommissionerSessionID:
		return "CommissionerSessionID"
	case TypeJoinerUDPPort:
		return "JoinerUDPPort"
	case TypeState:
		return "State"
	case TypeProvisioningURL:
		return "ProvisioningURL"
	case TypeVendorName:
		return "VendorName"
	case TypeVendorModel:
		return "VendorModel"
	case TypeVendorSWVersion:
		return "VendorSWVersion"
	case TypeVendorData:
		return "VendorData"
	case TypeVendorStackVersion:
		return "VendorStackVersion"
	default:
		return "Unknown"
	}
}

// extLengthEscape in the length octet switches to a 16-bit extended length.
const extLengthEscape = 0xFF

// maxValueLength is the largest value an extended-length TLV can carry.
const maxValueLength = 0xFFFF

// Append appends one TLV element to buf and returns the extended buffer.
// Values of 255 bytes or more use the extended length form.
func Append(buf []byte, typ Type, value []byte) ([]byte, error) {
	if len(value) > maxValueLength {
		return nil, ErrValueTooLong
	}
	buf = append(buf, byte(typ))
	if len(value) >= extLengthEscape {
		buf = append(buf, extLengthEscape)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(value)))
	} else {
		buf = append(buf, byte(len(value)))
	}
	return append(buf, value...), nil
}

// AppendUint8 appends a single-octet TLV element.
func AppendUint8(buf []byte, typ Type, v uint8) []byte {
	out, _ := Append(buf, typ, []byte{v})
	return out
}

// AppendUint16 appends a two-octet big-endian TLV element.
func AppendUint16(buf []byte, typ Type, v uint16) []byte {
	out, _ := Append(buf, typ, binary.BigEndian.AppendUint16(nil, v))
	return out
}

// AppendString appends a string-valued TLV element.
func AppendString(buf []byte, typ Type, s string) ([]byte, error) {
	return Append(buf, typ, []byte(s))
}

// Reader iterates over the TLV elements of a buffer.
//
// Usage:
//
//	r := meshcop.NewReader(buf)
//	for r.Next() {
//	    switch r.Type() { ... }
//	}
//	if err := r.Err(); err != nil { ... }
type Reader struct {
	buf []byte
	off int

	typ   Type
	value []byte
	has   bool
	err   error
}

// NewReader creates a Reader over buf. The buffer is not copied; element
// values alias it.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Next advances to the next element. It returns false at the end of the
// buffer or on a malformed element; check Err to distinguish.
func (r *Reader) Next() bool {
	r.has = false
	if r.err != nil || r.off >= len(r.buf) {
		return false
	}
	if len(r.buf)-r.off < 2 {
		r.err = ErrTruncated
		return false
	}
	typ := Type(r.buf[r.off])
	length := int(r.buf[r.off+1])
	r.off += 2
	if length == extLengthEscape {
		if len(r.buf)-r.off < 2 {
			r.err = ErrTruncated
			return false
		}
		length = int(binary.BigEndian.Uint16(r.buf[r.off : r.off+2]))
		r.off += 2
	}
	if len(r.buf)-r.off < length {
		r.err = ErrTruncated
		return false
	}
	r.typ = typ
	r.value = r.buf[r.off : r.off+length]
	r.off += length
	r.has = true
	return true
}

// Err returns the first decoding error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Type returns the current element's TLV type.
func (r *Reader) Type() Type {
	return r.typ
}

// Value returns the current element's value. The slice aliases the input
// buffer.
func (r *Reader) Value() []byte {
	return r.value
}

// Uint8 returns the current value as a single octet.
func (r *Reader) Uint8() (uint8, error) {
	if !r.has {
		return 0, ErrNoElement
	}
	if len(r.value) != 1 {
		return 0, ErrTruncated
	}
	return r.value[0], nil
}

// Uint16 returns the current value as a big-endian 16-bit integer.
func (r *Reader) Uint16() (uint16, error) {
	if !r.has {
		return 0, ErrNoElement
	}
	if len(r.value) != 2 {
		return 0, ErrTruncated
	}
	return binary.BigEndian.Uint16(r.value), nil
}

// Find returns the value of the first element of the given type, or nil
// if the buffer holds none. Malformed buffers yield an error.
func Find(buf []byte, typ Type) ([]byte, error) {
	r := NewReader(buf)
	for r.Next() {
		if r.Type() == typ {
			return r.Value(), nil
		}
	}
	return nil, r.Err()
}
