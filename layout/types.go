package layout

// 该文件定义笔画布局的结果类型，供渲染器（G-code、预览）与调试 JSON 共用。

// Cursor is the drawing position carried from one batch to the next.
// Initialized is false until the first batch has been laid out.
type Cursor struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Initialized bool    `json:"initialized"`
}

// Segment is one absolute pen motion: travel to (X, Y) with the pen up, or
// draw a line to it with the pen down. Units are millimeters.
type Segment struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	PenDown bool    `json:"penDown"`
}

// Params are the glyph metrics and line geometry, all in millimeters.
type Params struct {
	CharWidth    float64 `json:"charWidth"`
	CharHeight   float64 `json:"charHeight"`
	LineSpacing  float64 `json:"lineSpacing"`
	MarginLeft   float64 `json:"marginLeft"`
	MaxLineWidth float64 `json:"maxLineWidth"`
}

// Advance is the horizontal distance between two character origins.
func (p Params) Advance() float64 { return p.CharWidth * advanceFactor }

// Result 保存一次布局的输入游标、输出游标与全部笔画段。
type Result struct {
	Text     string    `json:"text"`
	Start    Cursor    `json:"start"`
	End      Cursor    `json:"end"`
	Segments []Segment `json:"segments"`
	Wraps    int       `json:"wraps"`
	Params   Params    `json:"params"`
}

// Bounds returns the bounding box of the start position and every segment.
func (r *Result) Bounds() (minX, minY, maxX, maxY float64) {
	minX, maxX = r.Start.X, r.Start.X
	minY, maxY = r.Start.Y, r.Start.Y
	for _, s := range r.Segments {
		minX = min(minX, s.X)
		maxX = max(maxX, s.X)
		minY = min(minY, s.Y)
		maxY = max(maxY, s.Y)
	}
	return minX, minY, maxX, maxY
}
