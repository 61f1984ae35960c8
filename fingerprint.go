package archive

import (
	"golang.org/x/crypto/blake2b"
)

// FingerprintSize is the length of a fingerprint in bytes.
const FingerprintSize = blake2b.Size256

// Fingerprint returns the BLAKE2b-256 digest of v's archive encoding.
//
// Equal values have equal fingerprints, except values holding maps whose key
// kind has no natural order (their entries are written in iteration order).
// Fingerprints depend on host byte order.
func Fingerprint(v any) ([FingerprintSize]byte, error) {
	data, err := NewCodec().Marshal(v)
	if err != nil {
		return [FingerprintSize]byte{}, err
	}
	return fingerprintBytes(data), nil
}

func fingerprintBytes(data []byte) [FingerprintSize]byte {
	return blake2b.Sum256(data)
}
