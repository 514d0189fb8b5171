package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		IndexURL:   "https://index.test/README.md",
		StartedAt:  time.Date(2026, 8, 29, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 8, 29, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Playlists: []PlaylistResult{
			{Name: "Sports", Status: StatusProcessed, Entries: 3, Available: 1, Unavailable: 2, ProbeFailed: 1},
			{Name: "", Status: StatusFailed}, // index/config 等合成项
			{Name: "Movies", Status: StatusFailed},
		},
	}

	r.Finalize()

	// name=="" 必须排在最后；其余按字典序。
	if r.Playlists[0].Name != "Movies" || r.Playlists[1].Name != "Sports" || r.Playlists[2].Name != "" {
		t.Fatalf("playlists 排序不符合契约：%v", []string{r.Playlists[0].Name, r.Playlists[1].Name, r.Playlists[2].Name})
	}
	if r.Summary.Processed != 1 || r.Summary.Failed != 2 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}
	if r.Summary.Entries != 3 || r.Summary.Available != 1 || r.Summary.Unavailable != 2 || r.Summary.ProbeFailed != 1 {
		t.Fatalf("条目计数不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	// time.Time 在 UTC 下应输出 'Z' 后缀。
	if len(b) == 0 || !bytes.Contains(b, []byte("\"started_at\":\"2026-08-29T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestProbeResult_String(t *testing.T) {
	cases := map[ProbeResult]string{
		Reachable:   "reachable",
		Unreachable: "unreachable",
		ProbeFailed: "probe_failed",
	}
	for r, want := range cases {
		if r.String() != want {
			t.Fatalf("期望 %q，实际 %q", want, r.String())
		}
	}
	if Reachable.Available() != true || Unreachable.Available() || ProbeFailed.Available() {
		t.Fatalf("Available 口径不正确")
	}
}
