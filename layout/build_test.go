package layout

import (
	"math"
	"testing"

	"github.com/ByLCY/quill/glyph"
)

func testOptions(maxWidth float64) BuildOptions {
	p := DefaultParams()
	if maxWidth > 0 {
		p.MaxLineWidth = maxWidth
	}
	return BuildOptions{Glyphs: glyph.Default(), Params: p}
}

// TestBuildHI 覆盖端到端样例："HI" 从 (10,10) 开始，不换行。
func TestBuildHI(t *testing.T) {
	res, err := Build("HI", Cursor{X: 10, Y: 10}, testOptions(0))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	wantX := 10 + 5*1.2*2
	if math.Abs(res.End.X-wantX) > 1e-9 || res.End.Y != 10 {
		t.Fatalf("cursor after HI: got (%g,%g) want (%g,10)", res.End.X, res.End.Y, wantX)
	}
	if !res.End.Initialized {
		t.Fatalf("end cursor must be marked initialized")
	}
	if res.Wraps != 0 {
		t.Fatalf("expected no wrap, got %d", res.Wraps)
	}
	h := glyph.Default().Lookup('H')
	i := glyph.Default().Lookup('I')
	if len(res.Segments) != len(h)+len(i) {
		t.Fatalf("expected %d segments, got %d", len(h)+len(i), len(res.Segments))
	}
	// I 的第一个点位于第二个字符原点 (16,10) 偏移 (1,0)。
	first := res.Segments[len(h)]
	if first.PenDown || math.Abs(first.X-17) > 1e-9 || first.Y != 10 {
		t.Fatalf("unexpected first segment of I: %+v", first)
	}
}

// TestBuildContinuity 验证相邻两批次之间游标连续。
func TestBuildContinuity(t *testing.T) {
	opts := testOptions(0)
	first, err := Build("HELLO", Cursor{X: 10, Y: 10}, opts)
	if err != nil {
		t.Fatalf("first batch: %v", err)
	}
	second, err := Build("WORLD", first.End, opts)
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if second.Start != first.End {
		t.Fatalf("second batch must start at %+v, got %+v", first.End, second.Start)
	}
	if second.End.X <= second.Start.X {
		t.Fatalf("cursor went backwards without a wrap: %+v -> %+v", second.Start, second.End)
	}
}

// TestBuildWrapBoundary 验证换行条件恰为 x + 1.2*charWidth > maxLineWidth。
func TestBuildWrapBoundary(t *testing.T) {
	// 原点 10、16、22；22+6 > 22 时才换行。
	opts := testOptions(22)
	res, err := Build("AB", Cursor{X: 10, Y: 10}, opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if res.Wraps != 0 || res.End.X != 22 || res.End.Y != 10 {
		t.Fatalf("expected no wrap landing exactly on the limit, got wraps=%d end=%+v", res.Wraps, res.End)
	}

	res, err = Build("C", res.End, opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if res.Wraps != 1 {
		t.Fatalf("expected one wrap, got %d", res.Wraps)
	}
	if res.End.X != 16 || res.End.Y != 10-15 {
		t.Fatalf("wrap must reset x to the margin and lower y by the line spacing, got %+v", res.End)
	}
	if res.Segments[0].X != 10+5 {
		t.Fatalf("first C point must be drawn at the margin, got %+v", res.Segments[0])
	}
}

func TestBuildUnmappedDrawsAsSpace(t *testing.T) {
	opts := testOptions(0)
	start := Cursor{X: 30, Y: 40}
	unknown, err := Build("@", start, opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	space, err := Build(" ", start, opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(unknown.Segments) != len(space.Segments) {
		t.Fatalf("segment count mismatch: %d vs %d", len(unknown.Segments), len(space.Segments))
	}
	for i := range space.Segments {
		if unknown.Segments[i] != space.Segments[i] {
			t.Fatalf("segment %d: got %+v want %+v", i, unknown.Segments[i], space.Segments[i])
		}
	}
	if unknown.End != space.End {
		t.Fatalf("cursor mismatch: %+v vs %+v", unknown.End, space.End)
	}
}

// TestBuildNewlineIsNotALineBreak 换行符按未映射字符处理，只有宽度触发换行。
func TestBuildNewlineIsNotALineBreak(t *testing.T) {
	res, err := Build("A\nB", Cursor{X: 10, Y: 10}, testOptions(0))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if res.Wraps != 0 || res.End.Y != 10 {
		t.Fatalf("newline must not wrap, got wraps=%d end=%+v", res.Wraps, res.End)
	}
	if math.Abs(res.End.X-(10+3*6)) > 1e-9 {
		t.Fatalf("newline must advance like a space, got end x %g", res.End.X)
	}
}

func TestBuildLongTextWrapsRepeatedly(t *testing.T) {
	opts := testOptions(0)
	text := "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"
	res, err := Build(text, Cursor{X: 10, Y: 10}, opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if res.Wraps < 2 {
		t.Fatalf("expected at least two wraps, got %d", res.Wraps)
	}
	if res.End.Y != 10-15*float64(res.Wraps) {
		t.Fatalf("y must drop by line spacing per wrap, got %g after %d wraps", res.End.Y, res.Wraps)
	}
	for i, s := range res.Segments {
		if s.X > opts.Params.MaxLineWidth+opts.Params.CharWidth {
			t.Fatalf("segment %d exceeds the line: %+v", i, s)
		}
	}
}

func TestBuildRejectsBadOptions(t *testing.T) {
	if _, err := Build("A", Cursor{}, BuildOptions{Params: DefaultParams()}); err == nil {
		t.Fatalf("expected error without glyph table")
	}
	p := DefaultParams()
	p.MaxLineWidth = p.MarginLeft + 1
	if _, err := Build("A", Cursor{}, BuildOptions{Glyphs: glyph.Default(), Params: p}); err == nil {
		t.Fatalf("expected error when no glyph fits on a line")
	}
	p = DefaultParams()
	p.CharWidth = 0
	if _, err := Build("A", Cursor{}, BuildOptions{Glyphs: glyph.Default(), Params: p}); err == nil {
		t.Fatalf("expected error for zero char width")
	}
}

func TestResultBounds(t *testing.T) {
	res, err := Build("g", Cursor{X: 10, Y: 10}, testOptions(0))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	minX, minY, maxX, maxY := res.Bounds()
	if minY >= 10 {
		t.Fatalf("descender of g must reach below the baseline, minY=%g", minY)
	}
	if minX != 10 || maxX != 15 || maxY < 17 {
		t.Fatalf("unexpected bounds: (%g,%g)-(%g,%g)", minX, minY, maxX, maxY)
	}
}

// TestGlyphMatchesBuild 验证单字符笔画与 Build 在同一原点的输出一致。
func TestGlyphMatchesBuild(t *testing.T) {
	opts := testOptions(0)
	res, err := Build("HI", Cursor{X: 10, Y: 10}, opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	h := Glyph(opts.Glyphs, 'H', 10, 10, opts.Params)
	i := Glyph(opts.Glyphs, 'I', 10+opts.Params.Advance(), 10, opts.Params)
	want := append(h, i...)
	if len(want) != len(res.Segments) {
		t.Fatalf("expected %d segments, got %d", len(want), len(res.Segments))
	}
	for k := range want {
		if want[k] != res.Segments[k] {
			t.Fatalf("segment %d: got %+v want %+v", k, res.Segments[k], want[k])
		}
	}
}
