package name

import "testing"

func TestNormalize_EntityAndPunctuation(t *testing.T) {
	got := Normalize(" Some &nbsp; Name! ")
	if got != "Some_Name" {
		t.Fatalf("期望 Some_Name，实际 %q", got)
	}
}

func TestNormalize_NBSPGlyph(t *testing.T) {
	got := Normalize("Movies (US)")
	if got != "Movies_US" {
		t.Fatalf("期望 Movies_US，实际 %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		" Some &nbsp; Name! ",
		"News & Politics",
		"已有下划线_的名字",
		"  ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("不幂等：Normalize(%q)=%q，再规范化得到 %q", in, once, twice)
		}
	}
}

func TestNormalize_EmptyAndSymbolOnly(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Fatalf("空输入应得到空输出，实际 %q", got)
	}
	// 全符号输入规范化后为空：调用方必须跳过这类名字。
	if got := Normalize("!!!***"); got != "" {
		t.Fatalf("期望空串，实际 %q", got)
	}
}

func TestNormalize_CollapsesRuns(t *testing.T) {
	got := Normalize("A   B\t\tC")
	if got != "A_B_C" {
		t.Fatalf("期望 A_B_C，实际 %q", got)
	}
}
