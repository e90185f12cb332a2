package otc

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

// ErrInvalidLength is returned when the configured code length is unusable.
var ErrInvalidLength = errors.New("otc: code length must be between 4 and 9 digits")

// Generator produces numeric one-time codes.
type Generator interface {
	// Generate returns a new code as a decimal string.
	Generate() (string, error)
	// Length returns the number of digits in generated codes.
	Length() int
}

// NumericCode generates uniformly distributed numeric codes of a fixed length
// using a cryptographically secure random source.
//
// The first digit is never zero, so a 4-digit generator draws from
// [1000, 9999] — 9000 possible values.
type NumericCode struct {
	length int
	min    int64
	span   int64
}

// NewNumericCode constructs a generator for codes of the given digit length.
func NewNumericCode(length int) (*NumericCode, error) {
	if length < 4 || length > 9 {
		return nil, ErrInvalidLength
	}

	min := int64(1)
	for i := 1; i < length; i++ {
		min *= 10
	}

	return &NumericCode{
		length: length,
		min:    min,
		span:   min*10 - min, // e.g. 9000 for length 4
	}, nil
}

// Generate returns a new code drawn uniformly from the generator's range.
func (g *NumericCode) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(g.span))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(g.min+n.Int64(), 10), nil
}

// Length returns the number of digits in generated codes.
func (g *NumericCode) Length() int {
	return g.length
}
