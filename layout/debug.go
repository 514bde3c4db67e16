package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
// 内容包括原文、起止光标、全部笔画段（抬笔/落笔与坐标）、换行次数以及所用的布局参数，
// 与同名 .gcode 放在一起，可对照查看某一批文字为何落在该位置。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
