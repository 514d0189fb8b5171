package domain

// NamedResource 是从索引文档提取出的一条“名字 -> 播放列表 URL”记录。
//
// 不变量（实现必须遵守）：
// - Name 必须是规范化后的非空标识（见 internal/name）
// - 同名记录只保留文档顺序上最后出现的那条（last-write-wins）
type NamedResource struct {
	Name string
	URL  string
}
