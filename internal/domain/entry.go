package domain

// PlaylistEntry 是播放列表里的一个可播放条目：URL 行 + 紧邻其前的元数据行。
// Metadata 允许为空（URL 行之前没有 #EXTINF 行时）。
type PlaylistEntry struct {
	Metadata string
	URL      string
}

// ProbeResult 是对单个条目 URL 的存活探测结论。
//
// ProbeFailed 与 Unreachable 必须区分开：前者是“检查本身没做成”（超时/DNS/拒连），
// 后者是“检查完成但返回了非 200”。分区输出时两者都算不可用，但 report 分开计数。
type ProbeResult int

const (
	Reachable ProbeResult = iota
	Unreachable
	ProbeFailed
)

func (r ProbeResult) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case ProbeFailed:
		return "probe_failed"
	default:
		return "unknown"
	}
}

// Available 表示该结论是否应进入 available 分区。
func (r ProbeResult) Available() bool { return r == Reachable }
