package meshcop

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// PSKd length bounds in bytes.
const (
	MinPSKdLength = 1
	MaxPSKdLength = 32
)

// PSKc derivation parameters.
const (
	pskcIterations = 16384
	pskcKeyLength  = 16
	pskcSaltPrefix = "Thread"
)

// ValidatePSKd checks the PSKd length bounds. Character set restrictions
// are a policy of the provisioning front end, not enforced here.
func ValidatePSKd(pskd []byte) error {
	if len(pskd) < MinPSKdLength || len(pskd) > MaxPSKdLength {
		return ErrInvalidPSKdLength
	}
	return nil
}

// DerivePSKc stretches the commissioning passphrase into the 16-byte PSKc
// using PBKDF2 with the salt "Thread" || extended PAN ID || network name.
func DerivePSKc(passphrase string, networkName string, extPanID [8]byte) []byte {
	salt := make([]byte, 0, len(pskcSaltPrefix)+8+len(networkName))
	salt = append(salt, pskcSaltPrefix...)
	salt = append(salt, extPanID[:]...)
	salt = append(salt, networkName...)
	return pbkdf2.Key([]byte(passphrase), salt, pskcIterations, pskcKeyLength, sha256.New)
}
