package extract

import (
	"fmt"
	"strings"
)

// Extractor 把“索引文档的具体标记语法”限制在本包内部；核心流程只依赖统一接口
// 与稳定的 name -> url 映射。
//
// 约束：
// - Extract 必须是纯函数：相同输入 => 相同输出，不做任何 I/O
// - 同名记录按文档顺序 last-write-wins（映射覆盖；该策略是显式契约，不是实现巧合）
// - 规范化后为空的名字必须跳过
// - 零条匹配返回空映射（不是错误）；“没有可处理记录”由上层决定如何收尾
type Extractor interface {
	Name() string
	Extract(doc []byte) map[string]string
}

// Registry 是 extractor 的只读注册表（按 name 索引）。
// 用 map 做 O(1) 查找；策略数量极小，保持简单即可。
type Registry struct {
	byName map[string]Extractor
}

func NewRegistry(extractors ...Extractor) (Registry, error) {
	byName := make(map[string]Extractor, len(extractors))
	for _, e := range extractors {
		if e == nil {
			return Registry{}, fmt.Errorf("extractor 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(e.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("extractor.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 extractor：%q", name)
		}
		byName[name] = e
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Extractor, bool) {
	if r.byName == nil {
		return nil, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	e, ok := r.byName[name]
	return e, ok
}

// isPlaylistURL 判定 code span 内的文本是否是我们要的播放列表资源 URL。
func isPlaylistURL(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	return strings.HasSuffix(s, ".m3u") || strings.HasSuffix(s, ".m3u8")
}
