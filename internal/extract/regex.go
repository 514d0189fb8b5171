package extract

import (
	"regexp"

	"github.com/John-Robertt/m3ucheck/internal/name"
)

// 单行内：<td>显示名</td> ... <code>https://....m3u(8)</code>。
// '.' 不跨行，因此记录必须落在同一行（raw README 的表格行满足该形态）。
var recordRE = regexp.MustCompile(`<td>(.+?)</td>.*?<code>(https?://[^\s]+\.m3u8?)</code>`)

// RegexExtractor 是面向“已知固定形态”的正则策略。
//
// 该策略对文档标记的精确形态敏感（标签必须裸写、记录不能跨行），
// 保留它是为了处理半结构化文本（不是完整 HTML 的 README 片段）；
// 结构化文档优先用 table 策略。
type RegexExtractor struct{}

func (RegexExtractor) Name() string { return "regex" }

func (RegexExtractor) Extract(doc []byte) map[string]string {
	out := make(map[string]string, 64)
	for _, m := range recordRE.FindAllSubmatch(doc, -1) {
		n := name.Normalize(string(m[1]))
		if n == "" {
			continue
		}
		out[n] = string(m[2])
	}
	return out
}
