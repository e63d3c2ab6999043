package card

import (
	"crypto/rand"
	"io"
	"math/big"
)

// NumberLength is the digit count of issued card numbers.
const NumberLength = 16

// Generator produces card numbers and CVVs from a random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a generator reading from r, or crypto/rand when r is nil.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

func (g *Generator) digit(upper int64) (byte, error) {
	n, err := rand.Int(g.rand, big.NewInt(upper))
	if err != nil {
		return 0, err
	}
	return byte('0' + n.Int64()), nil
}

// Number returns a 16-digit number with a non-zero leading digit and a valid Luhn check digit.
func (g *Generator) Number() (string, error) {
	buf := make([]byte, NumberLength)
	first, err := g.digit(9)
	if err != nil {
		return "", err
	}
	buf[0] = first + 1
	for i := 1; i < NumberLength-1; i++ {
		if buf[i], err = g.digit(10); err != nil {
			return "", err
		}
	}
	buf[NumberLength-1] = luhnCheckDigit(buf[:NumberLength-1])
	return string(buf), nil
}

// CVV returns three random digits.
func (g *Generator) CVV() (string, error) {
	buf := make([]byte, 3)
	for i := range buf {
		d, err := g.digit(10)
		if err != nil {
			return "", err
		}
		buf[i] = d
	}
	return string(buf), nil
}

// luhnCheckDigit computes the digit that makes payload+digit Luhn-valid.
func luhnCheckDigit(payload []byte) byte {
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte('0' + (10-sum%10)%10)
}

// ValidNumber reports whether s is a 16-digit Luhn-valid number.
func ValidNumber(s string) bool {
	if len(s) != NumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return luhnCheckDigit([]byte(s[:NumberLength-1])) == s[NumberLength-1]
}
