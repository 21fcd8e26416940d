package idgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

// ErrExhausted is returned when every id in the range is taken
var ErrExhausted = errors.New("id space exhausted")

// randomAttempts caps rejection sampling before falling back to a scan
const randomAttempts = 1024

// Generator mints random decimal ids in the upper 90% of [0, bound]
type Generator struct {
	Source io.Reader
}

// New returns a generator backed by crypto/rand
func New() *Generator {
	return &Generator{Source: rand.Reader}
}

// Generate returns an id in [bound/10, bound] for which taken reports false
func (g *Generator) Generate(taken func(id string) bool, bound int64) (string, error) {
	if bound < 1 {
		return "", fmt.Errorf("invalid id bound %d", bound)
	}
	lo := bound / 10
	size := bound - lo + 1

	src := g.Source
	if src == nil {
		src = rand.Reader
	}

	for i := 0; i < randomAttempts; i++ {
		n, err := rand.Int(src, big.NewInt(size))
		if err != nil {
			return "", fmt.Errorf("failed to read random id: %w", err)
		}
		id := strconv.FormatInt(lo+n.Int64(), 10)
		if !taken(id) {
			return id, nil
		}
	}

	// Dense namespace: walk the range from a random offset
	n, err := rand.Int(src, big.NewInt(size))
	if err != nil {
		return "", fmt.Errorf("failed to read random id: %w", err)
	}
	start := n.Int64()
	for i := int64(0); i < size; i++ {
		id := strconv.FormatInt(lo+(start+i)%size, 10)
		if !taken(id) {
			return id, nil
		}
	}
	return "", ErrExhausted
}

// InSet adapts a set of ids to a taken predicate
func InSet[V any](ids map[string]V) func(string) bool {
	return func(id string) bool {
		_, ok := ids[id]
		return ok
	}
}
