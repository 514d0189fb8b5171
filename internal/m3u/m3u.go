package m3u

import (
	"bufio"
	"strings"

	"github.com/John-Robertt/m3ucheck/internal/domain"
)

const (
	// metadataPrefix 是条目元数据行的标记（M3U 扩展指令）。
	metadataPrefix = "#EXTINF"
	// urlPrefix 同时覆盖 http:// 与 https://。
	urlPrefix = "http"
)

// Parse 按行单趟扫描播放列表文本，把每个 URL 行与紧邻其前的元数据行配成条目。
//
// 状态机（两态）：
// - #EXTINF 开头：暂存为待配对元数据（覆盖之前未配对的；被覆盖者静默丢弃）
// - http 开头：发出 PlaylistEntry{Metadata: 待配对元数据, URL: 该行}，并清空暂存
// - 其他行（空行/#EXTM3U 等指令/注释）：忽略
//
// 终止：输入结束时仍未配对的元数据直接丢弃，绝不发出“悬空条目”。
func Parse(text string) []domain.PlaylistEntry {
	entries := make([]domain.PlaylistEntry, 0, 64)

	pending := ""
	sc := bufio.NewScanner(strings.NewReader(text))
	// 真实播放列表的 #EXTINF 行可能带很长的属性串，放宽单行上限。
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, metadataPrefix):
			pending = line
		case strings.HasPrefix(line, urlPrefix):
			entries = append(entries, domain.PlaylistEntry{Metadata: pending, URL: line})
			pending = ""
		}
	}

	return entries
}

// FormatEntries 把条目序列渲染为分区输出文件的内容：
// 每个条目是 "<metadata>\n<url>"，条目之间用换行连接（与原始下载文件同构，可直接播放）。
// 空序列得到空内容（分区为空时仍要写出空文件）。
func FormatEntries(entries []domain.PlaylistEntry) []byte {
	if len(entries) == 0 {
		return []byte{}
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Metadata+"\n"+e.URL)
	}
	return []byte(strings.Join(parts, "\n"))
}
