// Package rand generates random identifiers that need not be secure, such
// as generated chain ids and test namespaces.
package rand

import (
	crand "crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

const strChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Str returns a random alphanumeric string of the given length, or "" when
// length is not positive. Each call draws from a freshly seeded source.
func Str(length int) string {
	if length <= 0 {
		return ""
	}

	var seed int64
	if err := binary.Read(crand.Reader, binary.BigEndian, &seed); err != nil {
		panic(err)
	}
	src := mrand.New(mrand.NewSource(seed))

	chars := make([]byte, length)
	for i := range chars {
		chars[i] = strChars[src.Intn(len(strChars))]
	}
	return string(chars)
}
