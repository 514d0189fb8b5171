package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/m3ucheck/internal/name"
)

// TableExtractor 把索引文档当作 HTML 解析，逐 <tr> 提取记录：
// 行内第一个 <td> 的文本是显示名，行内第一个以 .m3u/.m3u8 结尾的 <code> 是资源 URL。
//
// 相比 regex 策略，DOM 遍历对换行/属性/嵌套标签不敏感，是默认策略。
type TableExtractor struct{}

func (TableExtractor) Name() string { return "table" }

func (TableExtractor) Extract(doc []byte) map[string]string {
	out := make(map[string]string, 64)
	if len(doc) == 0 {
		return out
	}

	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		// 解析不了就是“零条匹配”：Extract 的契约是不报错。
		return out
	}

	d.Find("tr").Each(func(_ int, row *goquery.Selection) {
		display := strings.TrimSpace(row.Find("td").First().Text())
		if display == "" {
			return
		}

		u := ""
		row.Find("code").EachWithBreak(func(_ int, c *goquery.Selection) bool {
			t := strings.TrimSpace(c.Text())
			if isPlaylistURL(t) {
				u = t
				return false
			}
			return true
		})
		if u == "" {
			return
		}

		n := name.Normalize(display)
		if n == "" {
			return
		}
		out[n] = u
	})

	return out
}
