package canvasrenderer

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/ByLCY/quill/glyph"
	"github.com/ByLCY/quill/layout"
)

func buildText(t *testing.T, text string) *layout.Result {
	t.Helper()
	res, err := layout.Build(text, layout.Cursor{X: 10, Y: 10}, layout.BuildOptions{
		Glyphs: glyph.Default(),
		Params: layout.DefaultParams(),
	})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func TestRenderPDF(t *testing.T) {
	out, err := NewRenderer(PDF).Render(buildText(t, "HELLO"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", out[:min(len(out), 16)])
	}
}

func TestRenderSVG(t *testing.T) {
	r := NewRenderer(SVG)
	r.ShowTravel = true
	out, err := r.Render(buildText(t, "HI"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(string(out), "<svg") || !strings.Contains(string(out), "<path") {
		t.Fatalf("expected svg with paths, got:\n%s", out)
	}
}

// TestRenderPNGThumbnail 验证 PNG 预览不超过缩略图尺寸且保持宽高比。
func TestRenderPNGThumbnail(t *testing.T) {
	r := NewRenderer(PNG)
	r.Thumbnail = 120
	res := buildText(t, "the quick brown fox")
	out, err := r.Render(res)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 120 || b.Dy() > 120 {
		t.Fatalf("thumbnail exceeds bounds: %v", b)
	}
	if b.Dx() <= b.Dy() {
		t.Fatalf("a single line of text must stay wider than tall: %v", b)
	}
}

func TestRenderRejectsEmpty(t *testing.T) {
	r := NewRenderer(PDF)
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for result without segments")
	}
	bad := &Renderer{Format: "tiff"}
	if _, err := bad.Render(buildText(t, "A")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"pdf": PDF, " SVG ": SVG, "Png": PNG} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatalf("expected error for gif")
	}
	if ext := (&Renderer{}).Ext(); ext != ".pdf" {
		t.Fatalf("default extension must be .pdf, got %s", ext)
	}
}
