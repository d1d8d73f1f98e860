// Package random seeds the generators used to roll attribute values.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return binary.LittleEndian.Uint64(b[:]), nil
}

// New returns a PCG generator for seed, drawing a fresh seed when seed is 0.
// The seed actually used is returned so a run can be reproduced.
func New(seed uint64) (*rand.Rand, uint64, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = s
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed, nil
}
