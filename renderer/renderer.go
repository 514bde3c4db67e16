package renderer

import "github.com/ByLCY/quill/layout"

// Renderer 将笔画布局结果输出为最终文件，例如 G-code 指令流或预览图。
// Render 返回生成的数据以及可能的错误；渲染器不得修改布局结果。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
