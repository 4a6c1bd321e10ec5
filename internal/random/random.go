package random

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mathrand "math/rand/v2"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns n random letters suitable for unguessable identifiers.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(allowedLetters))))
		if err != nil {
			return "", err
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}

// Source produces the randomness needed by gameplay: shuffling the round queue
// and picking bonus round candidates. It is an interface so that tests can
// supply a deterministic sequence and assert exact outcomes.
type Source interface {
	// IntN returns a uniformly distributed int in [0, n). n must be positive.
	IntN(n int) int
	// Shuffle randomizes the order of n elements through swap.
	Shuffle(n int, swap func(i, j int))
}

type source struct {
	rng *mathrand.Rand
}

// NewSource returns a Source seeded from the operating system entropy pool.
func NewSource() Source {
	var seed [16]byte
	// crypto/rand.Read never fails on supported platforms; a zero seed is
	// still a valid PCG state if it somehow does.
	_, _ = rand.Read(seed[:])
	hi := binary.LittleEndian.Uint64(seed[:8])
	lo := binary.LittleEndian.Uint64(seed[8:])
	return &source{rng: mathrand.New(mathrand.NewPCG(hi, lo))}
}

// NewSeeded returns a deterministic Source for tests.
func NewSeeded(seed uint64) Source {
	return &source{rng: mathrand.New(mathrand.NewPCG(seed, 0))}
}

func (s *source) IntN(n int) int {
	return s.rng.IntN(n)
}

func (s *source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}
