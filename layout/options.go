package layout

import "github.com/ByLCY/quill/glyph"

// BuildOptions 配置布局阶段所需的依赖：笔画字体与版面参数。
type BuildOptions struct {
	Glyphs *glyph.Table
	Params Params
}

// DefaultParams are the A4 settings of the original plotter setup.
func DefaultParams() Params {
	return Params{
		CharWidth:    5,
		CharHeight:   10,
		LineSpacing:  15,
		MarginLeft:   10,
		MaxLineWidth: 190, // A4 width minus margins
	}
}
