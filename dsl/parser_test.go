package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/quill/dsl"
)

const sampleFont = `
# test font
font Sample v1 {
  glyph 'L' {
    move 0 1
    draw 0 0
    draw 1 0
  }

  // inline form
  glyph ',' { move 0.6 0; draw 0.4 -0.2; draw .4 0 }
  glyph '\'' { move 0.5 1; draw 0.5 0.7 }
  glyph ' ' { move 0 0 }
}
`

func TestParseFont(t *testing.T) {
	file, err := dsl.ParseString(sampleFont)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if file.Name != "Sample" {
		t.Fatalf("expected font name Sample, got %s", file.Name)
	}
	if file.Version != "v1" {
		t.Fatalf("expected version v1, got %s", file.Version)
	}
	if len(file.Glyphs) != 4 {
		t.Fatalf("expected 4 glyphs, got %d", len(file.Glyphs))
	}

	l := file.Glyphs[0]
	if l.Char.Rune() != 'L' {
		t.Fatalf("expected first glyph L, got %q", l.Char.Rune())
	}
	if len(l.Points) != 3 {
		t.Fatalf("expected 3 points for L, got %d", len(l.Points))
	}
	if l.Points[0].PenDown() {
		t.Fatalf("first point of L must be a move")
	}
	if !l.Points[2].PenDown() || l.Points[2].X != 1 || l.Points[2].Y != 0 {
		t.Fatalf("unexpected last point of L: %+v", l.Points[2])
	}

	comma := file.Glyphs[1]
	if comma.Char.Rune() != ',' {
		t.Fatalf("expected comma glyph, got %q", comma.Char.Rune())
	}
	if got := comma.Points[1].Y; got != -0.2 {
		t.Fatalf("expected negative offset -0.2, got %g", got)
	}
	if got := comma.Points[2].X; got != 0.4 {
		t.Fatalf("expected .4 to parse as 0.4, got %g", got)
	}

	if file.Glyphs[2].Char.Rune() != '\'' {
		t.Fatalf("expected escaped quote glyph, got %q", file.Glyphs[2].Char.Rune())
	}
	if file.Glyphs[3].Char.Rune() != ' ' {
		t.Fatalf("expected space glyph, got %q", file.Glyphs[3].Char.Rune())
	}
}

func TestParseRejectsUnknownOperation(t *testing.T) {
	_, err := dsl.Parse(strings.NewReader(`font Bad v1 { glyph 'A' { jump 0 0 } }`))
	if err == nil {
		t.Fatalf("expected error for unknown stroke operation")
	}
}

func TestParseRejectsMultiCharLiteral(t *testing.T) {
	_, err := dsl.ParseString(`font Bad v1 { glyph 'AB' { move 0 0 } }`)
	if err == nil {
		t.Fatalf("expected error for multi-character glyph literal")
	}
}
