package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// TestWriteDebugJSON 检查调试 JSON 带有原文、起止光标、笔画段和布局参数。
func TestWriteDebugJSON(t *testing.T) {
	res, err := Build("HI", Cursor{X: 10, Y: 10}, testOptions(0))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("write debug json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got Result
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Text != "HI" {
		t.Fatalf("text: got %q", got.Text)
	}
	if got.Start != res.Start || got.End != res.End {
		t.Fatalf("cursors: got %+v -> %+v want %+v -> %+v", got.Start, got.End, res.Start, res.End)
	}
	if len(got.Segments) != len(res.Segments) || got.Segments[0] != res.Segments[0] {
		t.Fatalf("segments do not round trip")
	}
	if got.Params != res.Params {
		t.Fatalf("params: got %+v want %+v", got.Params, res.Params)
	}

	// nil 结果不写文件
	empty := filepath.Join(t.TempDir(), "none.json")
	if err := WriteDebugJSON(nil, empty); err != nil {
		t.Fatalf("nil result: %v", err)
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Fatalf("nil result must not create a file")
	}
}
