package crypto

import "errors"

var (
	ErrDecryptionFailed = errors.New("pin decryption failed")
	ErrInvalidPinFormat = errors.New("pin must be 4 digits")
)
