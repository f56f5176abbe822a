package download

import (
	"encoding/hex"
	"fmt"
	"hash"
)

// checksumVerifier hashes bytes as they are written and compares the
// digest against the expected hex string once the copy is done.
type checksumVerifier struct {
	hash     hash.Hash
	expected string
}

func (v *checksumVerifier) Write(p []byte) (int, error) {
	return v.hash.Write(p)
}

// Verify is a no-op on a nil verifier.
func (v *checksumVerifier) Verify() error {
	if v == nil {
		return nil
	}

	if actual := hex.EncodeToString(v.hash.Sum(nil)); actual != v.expected {
		return &Error{
			Err:    ErrChecksumMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", v.expected, actual),
		}
	}

	return nil
}
