package fonts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed strokes/*.glyphs
var fontFS embed.FS

// DefaultFont 是内置的单线笔画字体。
const DefaultFont = "strokes/default.glyphs"

// Load 返回内置笔画字体的字节数据，path 可写为 "embed:strokes/default.glyphs"、"strokes/default.glyphs" 或 "default"。
func Load(path string) ([]byte, error) {
	path = strings.TrimPrefix(path, "embed:")
	clean := strings.TrimSuffix(strings.TrimPrefix(path, "strokes/"), ".glyphs")
	target := "strokes/" + clean + ".glyphs"
	data, err := fontFS.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("读取内置字体 %s 失败: %w", target, err)
	}
	return data, nil
}
