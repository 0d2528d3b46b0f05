package fiasco

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDie is returned when text or a stored record does not describe a
// white or black d6.
var ErrInvalidDie = errors.New("invalid die")

// Die colors
const (
	White = "white"
	Black = "black"
)

const (
	minPips = 1
	maxPips = 6
)

var dieNamePattern = regexp.MustCompile(`^(w|b|white|black)\s?([1-6])$`)

// Die is a six-sided die that is either white or black
type Die struct {
	Color  string
	Number int
}

// NewDie validates color and number. Color accepts the w/b shorthand.
func NewDie(color string, number int) (Die, error) {
	switch strings.ToLower(color) {
	case "w", White:
		color = White
	case "b", Black:
		color = Black
	default:
		return Die{}, fmt.Errorf("%w: unknown color %q", ErrInvalidDie, color)
	}
	if number < minPips || number > maxPips {
		return Die{}, fmt.Errorf("%w: number %d not in range %d-%d", ErrInvalidDie, number, minPips, maxPips)
	}
	return Die{Color: color, Number: number}, nil
}

// ParseDie reads a die from chat tokens such as ["w5"], ["white", "5"] or ["b 2"]
func ParseDie(tokens []string) (Die, error) {
	text := strings.Join(tokens, " ")
	m := dieNamePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return Die{}, fmt.Errorf("%w: %q", ErrInvalidDie, text)
	}
	number, _ := strconv.Atoi(m[2])
	return NewDie(m[1], number)
}

// DieFromRecord rebuilds a die from its stored {c, n} record
func DieFromRecord(record interface{}) (Die, error) {
	fields, ok := record.(map[string]interface{})
	if !ok {
		return Die{}, fmt.Errorf("%w: record is %T", ErrInvalidDie, record)
	}

	color, _ := fields["c"].(string)
	number, err := coerceNumber(fields["n"])
	if err != nil {
		return Die{}, err
	}
	return NewDie(color, number)
}

func coerceNumber(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: number %v is not whole", ErrInvalidDie, n)
		}
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: number %q", ErrInvalidDie, n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%w: number %v", ErrInvalidDie, v)
	}
}

// Record returns the stored form of the die
func (d Die) Record() map[string]interface{} {
	return map[string]interface{}{"c": d.Color, "n": d.Number}
}

// Glyph returns the chat emoji for the die. Black dice carry a -black suffix.
func (d Die) Glyph() string {
	if d.Color == Black {
		return fmt.Sprintf(":d6-%d-black:", d.Number)
	}
	return fmt.Sprintf(":d6-%d:", d.Number)
}

// Roll draws a new number in place and returns it
func (d *Die) Roll(rng *rand.Rand) int {
	d.Number = rng.Intn(maxPips) + minPips
	return d.Number
}

// String returns "{color} {number}" for plain text replies
func (d Die) String() string {
	return fmt.Sprintf("%s %d", d.Color, d.Number)
}

// RandomDie creates a die of the given color with a random number
func RandomDie(color string, rng *rand.Rand) Die {
	d := Die{Color: color}
	d.Roll(rng)
	return d
}

// FormatPool renders dice as white glyphs followed by black glyphs
func FormatPool(dice []Die) string {
	if len(dice) == 0 {
		return ""
	}

	var whites, blacks []string
	for _, d := range dice {
		if d.Color == White {
			whites = append(whites, d.Glyph())
		} else {
			blacks = append(blacks, d.Glyph())
		}
	}

	groups := make([]string, 0, 2)
	if len(whites) > 0 {
		groups = append(groups, strings.Join(whites, " "))
	}
	if len(blacks) > 0 {
		groups = append(groups, strings.Join(blacks, " "))
	}
	return strings.Join(groups, " ")
}
