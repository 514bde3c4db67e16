package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestParseLength 覆盖配置文件中常见的长度写法。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in     string
		wantMM float64
	}{
		{"5", 5},
		{"5mm", 5},
		{" 1.5cm ", 15},
		{"1in", 25.4},
		{"72pt", 72 * PtToMm},
		{"-2mm", -2},
	}
	for _, c := range cases {
		l, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", c.in, err)
		}
		if got := l.ToMM(); math.Abs(got-c.wantMM) > 1e-9 {
			t.Fatalf("%q 转 mm 期望 %g，实际 %g", c.in, c.wantMM, got)
		}
	}
	for _, bad := range []string{"", "mm", "abc", "5px"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("期望 %q 解析失败", bad)
		}
	}
}

func TestLengthString(t *testing.T) {
	if got := (Length{Value: 1.5, Unit: UnitCM}).String(); got != "1.5cm" {
		t.Fatalf("expected 1.5cm, got %s", got)
	}
	if got := MM(190).String(); got != "190mm" {
		t.Fatalf("expected 190mm, got %s", got)
	}
}
