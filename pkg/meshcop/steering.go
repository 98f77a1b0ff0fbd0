package meshcop

import "crypto/sha256"

// DefaultSteeringDataLength is the steering data size used when the
// commissioner has joiners to admit.
const DefaultSteeringDataLength = 16

// JoinerID returns the short joiner identifier derived from a factory
// EUI-64: the first 8 bytes of the SHA-256 digest over the EUI-64.
func JoinerID(eui64 [8]byte) [8]byte {
	sum := sha256.Sum256(eui64[:])
	var id [8]byte
	copy(id[:], sum[:8])
	return id
}

// SteeringData is the bloom filter a commissioner publishes so that
// joiners can check pre-approval before attempting to join. Each joiner
// sets two bits, selected by CRC16-CCITT and CRC16-ANSI over its 8-byte
// joiner ID.
type SteeringData struct {
	bits []byte
}

// NewSteeringData creates an empty filter of n bytes (1-16).
func NewSteeringData(n int) (*SteeringData, error) {
	if n < 1 || n > DefaultSteeringDataLength {
		return nil, ErrInvalidFilterLength
	}
	return &SteeringData{bits: make([]byte, n)}, nil
}

// Allow sets the filter bits for the given joiner ID.
func (s *SteeringData) Allow(joinerID [8]byte) {
	numBits := uint16(len(s.bits) * 8)
	s.setBit(crc16CCITT(joinerID[:]) % numBits)
	s.setBit(crc16ANSI(joinerID[:]) % numBits)
}

// AllowAny sets every bit, admitting any joiner.
func (s *SteeringData) AllowAny() {
	for i := range s.bits {
		s.bits[i] = 0xFF
	}
}

// Clear resets the filter to admit no joiner.
func (s *SteeringData) Clear() {
	for i := range s.bits {
		s.bits[i] = 0
	}
}

// Contains reports whether both filter bits for the joiner ID are set.
// Bloom filter semantics apply: false positives are possible, false
// negatives are not.
func (s *SteeringData) Contains(joinerID [8]byte) bool {
	numBits := uint16(len(s.bits) * 8)
	return s.bit(crc16CCITT(joinerID[:])%numBits) && s.bit(crc16ANSI(joinerID[:])%numBits)
}

// IsEmpty reports whether no bit is set.
func (s *SteeringData) IsEmpty() bool {
	for _, b := range s.bits {
		if b != 0 {
			return false
		}
	}
	return true
}

// Bytes returns the filter contents, suitable for a Steering Data TLV.
func (s *SteeringData) Bytes() []byte {
	return append([]byte(nil), s.bits...)
}

func (s *SteeringData) setBit(i uint16) {
	s.bits[i/8] |= 1 << (7 - i%8)
}

func (s *SteeringData) bit(i uint16) bool {
	return s.bits[i/8]&(1<<(7-i%8)) != 0
}

// crc16CCITT computes CRC16 with polynomial 0x1021, zero initial value,
// no reflection.
func crc16CCITT(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// crc16ANSI computes CRC16 with reflected polynomial 0xA001 (0x8005),
// zero initial value.
func crc16ANSI(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
