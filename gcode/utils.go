package gcode

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

var (
	ErrValueSyntax  = errors.New("invalid syntax")
	ErrIntegerRange = errors.New("value out of range")

	reNonWord = regexp.MustCompile(`\W+`)
)

const (
	maxUint64   = math.MaxUint64
	maxInt64    = math.MaxInt64
	absMinInt64 = 1 << 63
)

// CleanID turns a slicer object name into a klipper object name.
func CleanID(name string) string {
	return strings.Trim(reNonWord.ReplaceAllString(name, "_"), "_")
}

func ParseInt(b []byte) (int64, error) {
	if v, ok, overflow := _parseInt(b); !ok {
		if overflow {
			return 0, ErrIntegerRange
		}
		return 0, ErrValueSyntax
	} else {
		return v, nil
	}
}

// removeDuplicateSpaces removes all consecutive spaces in a string
func removeDuplicateSpaces(s string) string {
	var (
		sb        strings.Builder
		prevSpace = false
	)

	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			if !prevSpace {
				sb.WriteByte(s[i])
				prevSpace = true
			}
		} else {
			sb.WriteByte(s[i])
			prevSpace = false
		}
	}

	return sb.String()
}

// prepareLineToParse normalizes whitespace so fields are split by a single space.
// It doesn't verify the line is valid G-code.
func prepareLineToParse(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r':
			return -1
		case '\t':
			return ' '
		}
		return r
	}, s)
	return removeDuplicateSpaces(strings.TrimSpace(s))
}

// About 2x faster then strconv.ParseInt because it only supports base 10
func _parseInt(bytes []byte) (v int64, ok bool, overflow bool) {
	if len(bytes) == 0 {
		return 0, false, false
	}

	var neg bool = false
	if bytes[0] == '-' {
		neg = true
		bytes = bytes[1:]
	}
	if len(bytes) == 0 {
		return 0, false, false
	}

	var n uint64 = 0
	for _, c := range bytes {
		if c < '0' || c > '9' {
			return 0, false, false
		}
		if n > maxUint64/10 {
			return 0, false, true
		}
		n *= 10
		n1 := n + uint64(c-'0')
		if n1 < n {
			return 0, false, true
		}
		n = n1
	}

	if n > maxInt64 {
		if neg && n == absMinInt64 {
			return math.MinInt64, true, false
		}
		return 0, false, true
	}

	if neg {
		return -int64(n), true, false
	} else {
		return int64(n), true, false
	}
}
