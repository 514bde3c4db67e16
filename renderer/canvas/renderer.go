package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/quill/layout"
	"github.com/ByLCY/quill/renderer"
)

// Format 是预览文件的输出格式。
type Format string

const (
	PDF Format = "pdf"
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat 解析格式名称，大小写不敏感。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PDF, SVG, PNG:
		return f, nil
	default:
		return "", fmt.Errorf("不支持的预览格式 %q", s)
	}
}

// Renderer draws the pen strokes of a layout result via github.com/tdewolff/canvas
// so a batch can be checked before it goes to the plotter.
type Renderer struct {
	Format Format
	// StrokeWidth is the pen width in millimeters.
	StrokeWidth float64
	// Margin is added around the drawing bounds, in millimeters.
	Margin float64
	// ShowTravel draws pen-up moves as thin grey lines.
	ShowTravel bool
	// DotsPerMM is the PNG rasterization resolution.
	DotsPerMM float64
	// Thumbnail bounds the PNG size in pixels; zero keeps full resolution.
	Thumbnail uint
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates a preview renderer with sensible defaults.
func NewRenderer(format Format) *Renderer {
	return &Renderer{
		Format:      format,
		StrokeWidth: 0.5,
		Margin:      5,
		DotsPerMM:   5,
		Thumbnail:   800,
	}
}

// Ext returns the file extension for the configured format, including the dot.
func (r *Renderer) Ext() string {
	if r.Format == "" {
		return "." + string(PDF)
	}
	return "." + string(r.Format)
}

// Render renders the strokes into the configured format.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Segments) == 0 {
		return nil, fmt.Errorf("缺少可渲染的笔画")
	}

	c := r.draw(result)
	var buf bytes.Buffer
	switch r.Format {
	case PDF, "":
		writer := pdf.New(&buf, c.W, c.H, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写出 PDF 失败: %w", err)
		}
	case SVG:
		writer := svg.New(&buf, c.W, c.H, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写出 SVG 失败: %w", err)
		}
	case PNG:
		dpmm := r.DotsPerMM
		if dpmm <= 0 {
			dpmm = 5
		}
		var img image.Image = rasterizer.Draw(c, canvas.DPMM(dpmm), canvas.DefaultColorSpace)
		if r.Thumbnail > 0 {
			// Thumbnail keeps the aspect ratio and never upscales.
			img = resize.Thumbnail(r.Thumbnail, r.Thumbnail, img, resize.Lanczos3)
		}
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("写出 PNG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的预览格式 %q", r.Format)
	}
	return buf.Bytes(), nil
}

// draw lays the segments onto a canvas sized to their bounds. Plotter
// coordinates grow upwards, which matches canvas.CartesianI.
func (r *Renderer) draw(result *layout.Result) *canvas.Canvas {
	minX, minY, maxX, maxY := result.Bounds()
	margin := max(r.Margin, 0)
	width := maxX - minX + 2*margin
	height := maxY - minY + 2*margin
	offX, offY := margin-minX, margin-minY

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianI)
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeCapper(canvas.RoundCap)
	ctx.SetStrokeJoiner(canvas.RoundJoin)

	ink := &canvas.Path{}
	travel := &canvas.Path{}
	x, y := result.Start.X, result.Start.Y
	for _, s := range result.Segments {
		if s.PenDown {
			if ink.Empty() || !sameEnd(ink, x+offX, y+offY) {
				ink.MoveTo(x+offX, y+offY)
			}
			ink.LineTo(s.X+offX, s.Y+offY)
		} else if s.X != x || s.Y != y {
			travel.MoveTo(x+offX, y+offY)
			travel.LineTo(s.X+offX, s.Y+offY)
		}
		x, y = s.X, s.Y
	}

	if r.ShowTravel && !travel.Empty() {
		ctx.SetStrokeColor(color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff})
		ctx.SetStrokeWidth(r.strokeWidth() / 3)
		ctx.DrawPath(0, 0, travel)
	}
	if !ink.Empty() {
		ctx.SetStrokeColor(canvas.Black)
		ctx.SetStrokeWidth(r.strokeWidth())
		ctx.DrawPath(0, 0, ink)
	}
	return c
}

func (r *Renderer) strokeWidth() float64 {
	if r.StrokeWidth > 0 {
		return r.StrokeWidth
	}
	return 0.5
}

func sameEnd(p *canvas.Path, x, y float64) bool {
	end := p.Pos()
	return end.X == x && end.Y == y
}
