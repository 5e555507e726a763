package common

// WipeByteArray zeroes b in place. Use it to scrub passwords from memory
// once they have been handed to the hasher or the wire.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
