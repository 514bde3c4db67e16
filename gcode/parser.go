// Package gcode knows the small G-code dialect the plotter speaks: the
// command vocabulary, a line parser, and the duration estimator that reads
// programs back.
package gcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Commands emitted for the pen plotter. The pen servo is driven by the
// spindle outputs: M03 lifts the pen, M05 lowers it.
const (
	UnitsMillimeters    = "G21"
	AbsolutePositioning = "G90"
	PenUp               = "M03 S90"
	PenDown             = "M05"
	Rapid               = "G0"
	Linear              = "G1"
	EndProgram          = "M2"
)

// ErrSyntax reports a line that is not valid G-code.
var ErrSyntax = errors.New("gcode: syntax error")

var (
	lineLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Comment", Pattern: `;[^\n]*`},
		{Name: "ParenComment", Pattern: `\([^)\n]*\)`},
		{Name: "Word", Pattern: `[A-Za-z][-+]?(?:\d+\.\d*|\.\d+|\d+)`},
	})

	lineParser = participle.MustBuild[lineAST](
		participle.Lexer(lineLexer),
		participle.Elide("Whitespace", "Comment", "ParenComment"),
	)
)

type lineAST struct {
	Words []*wordAST `parser:"@@*"`
}

type wordAST struct {
	Raw string `parser:"@Word"`
}

// Word is a letter code with its numeric argument, e.g. X12.5.
type Word struct {
	Letter byte
	Value  float64
}

func (w Word) String() string {
	return string(w.Letter) + strconv.FormatFloat(w.Value, 'f', -1, 64)
}

// Block is one parsed line. Comments are dropped.
type Block struct {
	Words []Word
}

// ParseLine parses a single line of G-code.
func ParseLine(line string) (Block, error) {
	ast, err := lineParser.ParseString("", line)
	if err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	b := Block{Words: make([]Word, 0, len(ast.Words))}
	for _, w := range ast.Words {
		v, err := strconv.ParseFloat(w.Raw[1:], 64)
		if err != nil {
			return Block{}, fmt.Errorf("%w: bad number in %q", ErrSyntax, w.Raw)
		}
		b.Words = append(b.Words, Word{Letter: strings.ToUpper(w.Raw[:1])[0], Value: v})
	}
	return b, nil
}

// Has reports whether the block carries the word letter+value, so M3 and
// M03 are the same command.
func (b Block) Has(letter byte, value float64) bool {
	for _, w := range b.Words {
		if w.Letter == letter && w.Value == value {
			return true
		}
	}
	return false
}

// Get returns the first argument for letter.
func (b Block) Get(letter byte) (float64, bool) {
	for _, w := range b.Words {
		if w.Letter == letter {
			return w.Value, true
		}
	}
	return 0, false
}

// IsMove reports a rapid (G0) or linear (G1) move.
func (b Block) IsMove() bool { return b.Has('G', 0) || b.Has('G', 1) }

// IsPenUp reports the pen-lift command.
func (b Block) IsPenUp() bool { return b.Has('M', 3) }

// IsPenDown reports the pen-lower command.
func (b Block) IsPenDown() bool { return b.Has('M', 5) }
