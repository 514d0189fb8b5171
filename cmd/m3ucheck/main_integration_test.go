package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/John-Robertt/m3ucheck/internal/domain"
)

func buildCLI(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("读取 cwd 失败：%v", err)
	}
	repoRoot := filepath.Clean(filepath.Join(wd, "..", ".."))

	bin := filepath.Join(t.TempDir(), "m3ucheck")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/m3ucheck")
	cmd.Dir = repoRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("构建失败：%v\n%s", err, out)
	}
	return bin
}

func TestCLI_NoTTY_StdoutOnlyRunReportJSON(t *testing.T) {
	// 这个测试锁定对外契约：stdout 非 TTY 时只能输出一个 RunReport JSON（进度/配置必须走 stderr 或直接禁用）。
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.html":
			fmt.Fprintf(w, `<table><tr><td>Demo</td><td><code>%s/demo.m3u</code></td></tr></table>`, srvURL)
		case "/demo.m3u":
			fmt.Fprintf(w, "#EXTINF:-1,S\n%s/stream\n", srvURL)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	bin := buildCLI(t)

	// 使用独立的 cwd：配置文件与默认输出目录都落在临时目录里。
	workDir := t.TempDir()

	cmd := exec.Command(bin, "run", srv.URL+"/index.html")
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("命令执行失败：%v\nstderr=%s\nstdout=%s", err, stderr.String(), stdout.String())
	}

	// stdout 必须是单个 JSON。
	var rr domain.RunReport
	if err := json.Unmarshal(stdout.Bytes(), &rr); err != nil {
		t.Fatalf("stdout 不是合法的 RunReport JSON：%v\nstdout=%q", err, stdout.String())
	}
	if rr.Summary.Processed != 1 || rr.Summary.Available != 1 {
		t.Fatalf("report 内容不符合预期：%+v", rr.Summary)
	}
	// 进度/配置不应出现在 stdout。
	if strings.Contains(stdout.String(), "配置（生效）") || strings.Contains(stdout.String(), "进度:") {
		t.Fatalf("stdout 不应包含进度/配置输出：%q", stdout.String())
	}

	// stderr 至少应包含最终摘要行。
	if !strings.Contains(stderr.String(), "完成：processed=") {
		t.Fatalf("stderr 缺少完成摘要：%q", stderr.String())
	}

	// 产物落在 cwd 下的默认目录，且 report.json 与 stdout 内容同源。
	if _, err := os.Stat(filepath.Join(workDir, "m3u_files", "Demo.m3u")); err != nil {
		t.Fatalf("缺少原始下载产物：%v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "processed", "available_Demo.m3u")); err != nil {
		t.Fatalf("缺少 available 分区产物：%v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "processed", "report.json")); err != nil {
		t.Fatalf("缺少 report.json：%v", err)
	}
}

func TestCLI_IndexFetchFailureExitsNonZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	bin := buildCLI(t)
	workDir := t.TempDir()

	cmd := exec.Command(bin, "run", srv.URL+"/index.html")
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		t.Fatalf("索引抓取失败应退出非零\nstdout=%s", stdout.String())
	}

	var rr domain.RunReport
	if e := json.Unmarshal(stdout.Bytes(), &rr); e != nil {
		t.Fatalf("失败时 stdout 也必须是 RunReport JSON：%v\nstdout=%q", e, stdout.String())
	}
	if len(rr.Playlists) != 1 || rr.Playlists[0].ErrorCode != domain.ErrCodeIndexFetchFailed {
		t.Fatalf("期望 index_fetch_failed 合成项：%+v", rr.Playlists)
	}
	// 致命失败不落盘 report.json。
	if _, e := os.Stat(filepath.Join(workDir, "processed", "report.json")); !os.IsNotExist(e) {
		t.Fatalf("致命失败不应写 report.json，Stat err=%v", e)
	}
}
