package name

import (
	"strings"
	"unicode"
)

// Normalize 把索引文档里的自由文本显示名规范化为安全标识。
//
// 规则（固定，次序有意义）：
// 1) "&nbsp;" 实体与 U+00A0 统一替换为普通空格
// 2) 移除既不是字母/数字/下划线、也不是空白的字符
// 3) 去掉首尾空白，内部空白段折叠为单个下划线
//
// 约束：纯函数且幂等；空输入得到空输出（调用方必须把空名视为无效并跳过）。
// 注意：下划线必须保留，否则 Normalize(Normalize(x)) == Normalize(x) 不成立。
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "&nbsp;", " ")
	s = strings.ReplaceAll(s, " ", " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), "_")
}
