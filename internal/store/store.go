package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/m3ucheck/internal/infra/fsx"
)

// Store 提供播放列表原始文件与处理结果分区的落盘读写。
//
// 布局（固定）：
// - <M3UDir>/<name>.m3u                 原始下载
// - <ProcessedDir>/available_<name>.m3u  可用分区
// - <ProcessedDir>/unavailable_<name>.m3u 不可用分区
//
// name 必须是规范化后的标识（见 internal/name）；这里再做一次硬校验，
// 任何路径片段都不允许混进文件名。
type Store struct {
	M3UDir       string
	ProcessedDir string
}

// 规范化后的名字只含字母/数字/下划线；其余一律拒绝。
var nameRE = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)

func New(m3uDir, processedDir string) Store {
	return Store{
		M3UDir:       filepath.Clean(strings.TrimSpace(m3uDir)),
		ProcessedDir: filepath.Clean(strings.TrimSpace(processedDir)),
	}
}

// EnsureDirs 幂等地创建两个输出目录。
func (s Store) EnsureDirs() error {
	if err := fsx.EnsureDir(s.M3UDir); err != nil {
		return err
	}
	return fsx.EnsureDir(s.ProcessedDir)
}

// PlaylistPath 返回原始播放列表文件的路径。
func (s Store) PlaylistPath(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.M3UDir, name+".m3u"), nil
}

// WritePlaylist 原子写入原始下载内容。
func (s Store) WritePlaylist(name, text string) error {
	if err := checkName(name); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(s.M3UDir, name+".m3u", []byte(text))
}

// ReadPlaylist 读取此前保存的原始下载内容。
// 返回值 exists 表示文件是否存在（不存在不算错误）。
func (s Store) ReadPlaylist(name string) (text string, exists bool, err error) {
	path, err := s.PlaylistPath(name)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

// WriteAvailable 原子写入可用分区（分区为空时写出空文件）。
func (s Store) WriteAvailable(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(s.ProcessedDir, "available_"+name+".m3u", data)
}

// WriteUnavailable 原子写入不可用分区（分区为空时写出空文件）。
func (s Store) WriteUnavailable(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	return fsx.WriteFileAtomic(s.ProcessedDir, "unavailable_"+name+".m3u", data)
}

func checkName(name string) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("非法的播放列表名：%q", name)
	}
	return nil
}
