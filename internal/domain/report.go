package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

const (
	ErrCodeIndexFetchFailed = "index_fetch_failed"
	ErrCodeExtractEmpty     = "extract_empty"
	ErrCodeDownloadFailed   = "download_failed"
	ErrCodePersistFailed    = "persist_failed"
	ErrCodeIOFailed         = "io_failed"
	ErrCodeConfigInvalid    = "config_invalid"
)

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
type RunReport struct {
	IndexURL string `json:"index_url"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary   ReportSummary    `json:"summary"`
	Playlists []PlaylistResult `json:"playlists"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`

	Entries     int `json:"entries"`
	Available   int `json:"available"`
	Unavailable int `json:"unavailable"`
	ProbeFailed int `json:"probe_failed"`
}

// PlaylistResult 是单个播放列表的处理结论。
//
// 约束：Unavailable 已包含 ProbeFailed（分区口径）；ProbeFailed 单独计数只为诊断，
// 让消费者能把“资源下线”与“检查失败”区分开。
type PlaylistResult struct {
	Name string `json:"name"`
	URL  string `json:"url"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Entries     int `json:"entries"`
	Available   int `json:"available"`
	Unavailable int `json:"unavailable"`
	ProbeFailed int `json:"probe_failed"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) playlists 稳定排序：按 name 字典序；name=="" 的合成条目排在最后
// 3) summary 由 playlists 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Playlists, func(i, j int) bool {
		a := r.Playlists[i].Name
		b := r.Playlists[j].Name
		if a == "" && b == "" {
			return false
		}
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, p := range r.Playlists {
		switch p.Status {
		case StatusProcessed:
			s.Processed++
		case StatusFailed:
			s.Failed++
		}
		s.Entries += p.Entries
		s.Available += p.Available
		s.Unavailable += p.Unavailable
		s.ProbeFailed += p.ProbeFailed
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
