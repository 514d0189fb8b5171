package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_WriteAndReadPlaylist(t *testing.T) {
	root := t.TempDir()
	s := New(filepath.Join(root, "m3u_files"), filepath.Join(root, "processed"))

	if err := s.EnsureDirs(); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	// 幂等：重复创建不报错。
	if err := s.EnsureDirs(); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if err := s.WritePlaylist("Sports_News", "#EXTM3U\nhttp://a.test/1\n"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	text, ok, err := s.ReadPlaylist("Sports_News")
	if err != nil || !ok {
		t.Fatalf("期望命中，实际 ok=%v err=%v", ok, err)
	}
	if text != "#EXTM3U\nhttp://a.test/1\n" {
		t.Fatalf("内容不一致：%q", text)
	}

	if _, err := os.Stat(filepath.Join(root, "m3u_files", "Sports_News.m3u")); err != nil {
		t.Fatalf("期望写出 <name>.m3u：%v", err)
	}
}

func TestStore_ReadMissingIsNotError(t *testing.T) {
	root := t.TempDir()
	s := New(filepath.Join(root, "m3u_files"), filepath.Join(root, "processed"))

	_, ok, err := s.ReadPlaylist("Nope")
	if err != nil {
		t.Fatalf("不存在不应是错误：%v", err)
	}
	if ok {
		t.Fatalf("不应命中")
	}
}

func TestStore_PartitionFileNames(t *testing.T) {
	root := t.TempDir()
	s := New(filepath.Join(root, "m3u_files"), filepath.Join(root, "processed"))

	if err := s.WriteAvailable("Movies", []byte("#EXTINF:-1,A\nhttp://a.test/1")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := s.WriteUnavailable("Movies", []byte{}); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "processed", "available_Movies.m3u")); err != nil {
		t.Fatalf("期望写出 available_<name>.m3u：%v", err)
	}
	b, err := os.ReadFile(filepath.Join(root, "processed", "unavailable_Movies.m3u"))
	if err != nil {
		t.Fatalf("期望写出空的 unavailable_<name>.m3u：%v", err)
	}
	if len(b) != 0 {
		t.Fatalf("空分区应是空文件，实际 %q", string(b))
	}
}

func TestStore_RejectsUnsafeNames(t *testing.T) {
	root := t.TempDir()
	s := New(filepath.Join(root, "m3u_files"), filepath.Join(root, "processed"))

	for _, bad := range []string{"", "a/b", "..", "a b", "a\\b"} {
		if err := s.WritePlaylist(bad, "x"); err == nil {
			t.Fatalf("期望拒绝 %q，但写入成功", bad)
		}
	}
}
