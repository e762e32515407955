// Package random provides seed generation for puzzle layouts.
//
// Each generated puzzle gets its own math/rand source seeded from
// crypto/rand, so a layout can be reproduced from the logged seed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a math/rand source for seed. The result is not safe for
// concurrent use.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
