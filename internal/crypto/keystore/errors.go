package keystore

import "errors"

var (
	ErrEmptyPassphrase = errors.New("passphrase cannot be empty")
	ErrWrongPassphrase = errors.New("decryption failed (incorrect passphrase?)")
)
