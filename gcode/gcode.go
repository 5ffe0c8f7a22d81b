package gcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmptyString = errors.New("empty string")
	ErrNoParam     = errors.New("param not found")
)

const (
	// SEPARATOR is used to join the sections of a block when it is exported as a line
	SEPARATOR = " "
)

type Word struct {
	letter byte
	addr   string
}

func (w *Word) Letter() byte {
	return w.letter
}

func (w *Word) AddrAs(target any) error {
	switch typ := target.(type) {
	case *int:
		i64, err := ParseInt([]byte(w.addr))
		if err == nil {
			*typ = int(i64)
		}
		return err
	case *float64:
		f64, err := strconv.ParseFloat(w.addr, 64)
		if err == nil {
			*typ = f64
		}
		return err
	default:
		return fmt.Errorf("unsupported addr type as %T", typ)
	}
}

func (w *Word) Is(s string) bool {
	return len(s) > 0 && w.letter == s[0] && w.addr == s[1:]
}

func (w *Word) String() string {
	return string(append([]byte{w.letter}, w.addr...))
}

func NewWord(letter byte, addr string) (*Word, error) {
	if err := isValidWord(letter); err != nil {
		return nil, err
	}
	return &Word{letter: letter, addr: addr}, nil
}

func ParseWord(s string) (*Word, error) {
	if s == "" {
		return nil, ErrEmptyString
	}
	return NewWord(upper(s[0]), s[1:])
}

// Arg is a klipper style KEY=VALUE parameter.
type Arg struct {
	Key   string
	Value string
}

// Block is one parsed line of G-code.
type Block struct {
	cmd     *Word
	params  []*Word
	args    []Arg
	comment string
}

func (b *Block) Cmd() *Word {
	if b.cmd == nil {
		return &Word{}
	}
	return b.cmd
}

func (b *Block) Params() []*Word {
	if b.params == nil {
		return []*Word{}
	}
	return b.params
}

func (b *Block) Comment() string {
	return b.comment
}

func (b *Block) String() string {
	return strings.TrimSpace(b.Format("%c %p %m"))
}

func (b *Block) IsComment() bool {
	return b.cmd == nil && len(b.params) == 0 && b.comment != ""
}

func (b *Block) Is(s string) bool {
	return b.Cmd().Is(s)
}

// IsMove reports whether the block is a G0-G3 motion command.
func (b *Block) IsMove() bool {
	return b.Is("G0") || b.Is("G1") || b.Is("G2") || b.Is("G3")
}

func (b *Block) HasParam(p byte) bool {
	for _, w := range b.Params() {
		if w.Letter() == p {
			return true
		}
	}
	return false
}

func (b *Block) GetParam(p byte, target any) error {
	for _, w := range b.Params() {
		if w.Letter() == p {
			return w.AddrAs(target)
		}
	}
	return fmt.Errorf("%w: %s", ErrNoParam, string(p))
}

// Float returns the numeric value of param p; ok is false when it is
// missing or not a number.
func (b *Block) Float(p byte) (v float64, ok bool) {
	return v, b.GetParam(p, &v) == nil
}

func (b *Block) Arg(key string) (string, bool) {
	for _, a := range b.args {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

/*
Format formats the block with the given format string.

%c : command
%p : series of params, then KEY=VALUE args
%m : comments
*/
func (b *Block) Format(format string) string {
	result := strings.Builder{}
	result.Grow(128)

	for i := 0; i < len(format); i++ {
		if format[i] == '%' {
			if i+1 < len(format) {
				switch format[i+1] {
				case 'c':
					if b.cmd != nil {
						result.WriteString(b.Cmd().String())
					}
					i++
				case 'p':
					parts := make([]string, 0, len(b.params)+len(b.args))
					for _, w := range b.Params() {
						parts = append(parts, w.String())
					}
					for _, a := range b.args {
						parts = append(parts, a.Key+"="+a.Value)
					}
					result.WriteString(strings.Join(parts, SEPARATOR))
					i++
				case 'm':
					result.WriteString(b.Comment())
					i++
				}
			}
		} else {
			result.WriteByte(format[i])
		}
	}

	return result.String()
}

func ParseBlock(source string) (*Block, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptyString
	}

	block := &Block{}

	// keep comments
	if i := strings.Index(source, ";"); i != -1 {
		block.comment = strings.TrimSpace(source[i:])
		source = source[:i]
	}

	parse := prepareLineToParse(source)
	if parse == "" {
		return block, nil // only comments
	}

	words := make([]*Word, 0, 8)
	for i, field := range strings.Split(parse, SEPARATOR) {
		if i > 0 {
			if k, v, found := strings.Cut(field, "="); found {
				block.args = append(block.args, Arg{Key: strings.ToUpper(k), Value: v})
				continue
			}
		}
		if err := isValidWord(upper(field[0])); err != nil {
			continue
		}
		w, err := ParseWord(field)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	if len(words) > 0 {
		block.cmd = words[0]
		block.params = words[1:]
	}

	return block, nil
}

// isValidWord reports whether a potential word letter is a G-code address letter.
func isValidWord(letter byte) error {
	if letter >= 'A' && letter <= 'Z' {
		return nil
	}
	return fmt.Errorf("gcode's word has invalid value: %v", letter)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
