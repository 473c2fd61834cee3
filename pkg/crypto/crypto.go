package crypto

import (
	"crypto/rand"
	"math/big"
)

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// Source draws indexes from crypto/rand. It is safe for concurrent use.
type Source struct{}

func (Source) Intn(n int) int {
	return RandIntn(n)
}
