package actor

import (
	"fmt"

	"github.com/cellgate/cellgate/gcra"
)

const maxKeyBytes = 256

// allowedKeyChars is a precomputed O(1) lookup for key character
// validation: alphanumeric ASCII plus the separators transports commonly
// compose keys from.
var allowedKeyChars [128]bool

func init() {
	for _, c := range "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-:.@" {
		allowedKeyChars[c] = true
	}
}

// validateKey rejects empty keys, keys over maxKeyBytes, and keys
// containing anything outside allowedKeyChars. It returns
// gcra.ErrInvalidParameter so every transport's existing error mapping
// handles a rejected key the same way it handles a bad policy parameter.
func validateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key cannot be empty", gcra.ErrInvalidParameter)
	}
	if len(key) > maxKeyBytes {
		return fmt.Errorf("%w: key exceeds %d bytes, got %d", gcra.ErrInvalidParameter, maxKeyBytes, len(key))
	}
	for i, r := range key {
		if r >= 128 || !allowedKeyChars[r] {
			return fmt.Errorf("%w: key contains invalid character %q at byte %d", gcra.ErrInvalidParameter, r, i)
		}
	}
	return nil
}
