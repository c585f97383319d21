package idgen

import (
	"math/rand/v2"
	"strconv"
)

// Generator produces short file identifiers. Implementations are not
// required to guarantee uniqueness; the record store's primary key is the
// arbiter and callers retry on conflict.
type Generator interface {
	Generate() string
}

// Numeric generates 6-digit codes in [100000, 999999], short enough to
// type by hand. 900,000 possible values keeps collisions rare for the
// expected number of concurrently live files.
type Numeric struct{}

// NewNumeric creates a new numeric code generator
func NewNumeric() *Numeric {
	return &Numeric{}
}

// Generate returns a random 6-digit code. Safe for concurrent use.
func (g *Numeric) Generate() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}
