package dsl

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	glyphLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Char", Pattern: `'(?:\\.|[^'\\])'`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[{};]`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(glyphLexer),
		participle.Elide("Whitespace", "HashComment", "LineComment"),
	)
)

// File is the root AST node of a stroke font file.
//
//	font Default v1 {
//	  glyph 'L' { move 0 1; draw 0 0; draw 1 0 }
//	}
type File struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"'font' @Ident"`
	Version string         `parser:"@Ident"`
	Glyphs  []*Glyph       `parser:"'{' @@* '}'"`
}

// Glyph binds one character to its ordered stroke points.
type Glyph struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Char   CharLiteral    `parser:"'glyph' @Char"`
	Points []*Point       `parser:"'{' ( @@ ';'? )* '}'"`
}

// Point is a single offset inside the character cell. "move" travels with
// the pen lifted, "draw" draws a line to the point.
type Point struct {
	Pos lexer.Position `parser:"" json:"-"`
	Op  string         `parser:"@( 'move' | 'draw' )"`
	X   float64        `parser:"@Number"`
	Y   float64        `parser:"@Number"`
}

// PenDown reports whether the point is reached with the pen on the paper.
func (p *Point) PenDown() bool { return p.Op == "draw" }

// CharLiteral unquotes a single-quoted Go rune literal on capture.
type CharLiteral rune

// Capture implements participle.Capture.
func (c *CharLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("char literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return fmt.Errorf("invalid char literal %s: %w", values[0], err)
	}
	r, size := utf8.DecodeRuneInString(val)
	if r == utf8.RuneError || size != len(val) {
		return fmt.Errorf("char literal %s must hold exactly one character", values[0])
	}
	*c = CharLiteral(r)
	return nil
}

// Rune returns the captured character.
func (c CharLiteral) Rune() rune { return rune(c) }

// Parse parses a stroke font from an io.Reader.
func Parse(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}

// ParseString parses a stroke font from a string.
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}

// ParseBytes parses a stroke font, using name in error positions.
func ParseBytes(name string, data []byte) (*File, error) {
	return fileParser.ParseBytes(name, data)
}
