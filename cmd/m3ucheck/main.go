package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/John-Robertt/m3ucheck/internal/app/run"
	"github.com/John-Robertt/m3ucheck/internal/config"
	"github.com/John-Robertt/m3ucheck/internal/domain"
	"github.com/John-Robertt/m3ucheck/internal/extract"
	"github.com/John-Robertt/m3ucheck/internal/infra/fsx"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		IndexURL:     ra.IndexURL,
		Extractor:    ra.Extractor,
		ExtractorSet: ra.ExtractorSet,
		Workers:      ra.Workers,
		WorkersSet:   ra.WorkersSet,
	})
	if err != nil {
		rr := reportForConfigError(ra, err)
		emitReport(rr)
		return 1
	}

	reg, e := extract.NewRegistry(
		extract.TableExtractor{},
		extract.RegexExtractor{},
	)
	if e != nil {
		fmt.Fprintf(os.Stderr, "初始化 extractor registry 失败：%v\n", e)
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := run.ExecuteWithObserver(context.Background(), eff, reg, nil, obs)

	fatal := runFatal(rr)
	// 正常完成的 run 才落盘 report.json（致命失败时输出目录可能根本不存在）。
	if !fatal {
		if err := writeReportFile(eff.ProcessedDir, rr); err != nil {
			fmt.Fprintf(os.Stderr, "写入 report.json 失败：%v\n", err)
			emitReport(rr)
			return 1
		}
	}

	emitReport(rr)
	if interactive {
		emitLocations(progressW, eff, !fatal)
	}
	// 单个播放列表的失败是局部失败：run 正常完成即退出 0。
	if fatal {
		return 1
	}
	return 0
}

// runFatal 判断 run 是否在索引/配置层面整体失败（report 只有一条 name=="" 的合成项）。
func runFatal(rr domain.RunReport) bool {
	for _, p := range rr.Playlists {
		if p.Name != "" {
			continue
		}
		switch p.ErrorCode {
		case domain.ErrCodeIndexFetchFailed, domain.ErrCodeExtractEmpty, domain.ErrCodeConfigInvalid:
			return true
		}
	}
	return false
}

type runArgs struct {
	IndexURL string

	Extractor    string
	ExtractorSet bool

	Workers    int
	WorkersSet bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	setWorkers := func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("--workers 需要一个整数，实际是 %q", v)
		}
		ra.Workers = n
		ra.WorkersSet = true
		return nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--extractor":
			if i+1 >= len(args) {
				return runArgs{}, fmt.Errorf("--extractor 需要一个值")
			}
			i++
			ra.Extractor = args[i]
			ra.ExtractorSet = true
		case strings.HasPrefix(a, "--extractor="):
			ra.Extractor = strings.TrimPrefix(a, "--extractor=")
			ra.ExtractorSet = true
		case a == "--workers":
			if i+1 >= len(args) {
				return runArgs{}, fmt.Errorf("--workers 需要一个值")
			}
			i++
			if err := setWorkers(args[i]); err != nil {
				return runArgs{}, err
			}
		case strings.HasPrefix(a, "--workers="):
			if err := setWorkers(strings.TrimPrefix(a, "--workers=")); err != nil {
				return runArgs{}, err
			}
		case strings.HasPrefix(a, "-"):
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ra.IndexURL != "" {
				return runArgs{}, fmt.Errorf("重复的 index-url：%q 与 %q", ra.IndexURL, a)
			}
			ra.IndexURL = a
		}
	}

	if ra.ExtractorSet {
		switch ra.Extractor {
		case "table", "regex":
			// ok
		case "":
			return runArgs{}, fmt.Errorf("--extractor 不能为空")
		default:
			return runArgs{}, fmt.Errorf("--extractor 只能是 table 或 regex，实际是 %q", ra.Extractor)
		}
	}

	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  m3ucheck run [index-url] [--extractor table|regex] [--workers N]

命令：
  run    抓取索引 -> 下载播放列表 -> 探测条目 -> 分区落盘

使用 "m3ucheck run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  m3ucheck run [index-url] [--extractor table|regex] [--workers N]

参数：
  index-url    索引文档地址（未指定则读配置文件；最终默认 iptv-org README）
  --extractor  索引提取策略：table|regex（默认 table）
  --workers    校验阶段的并发播放列表数（默认 5，范围 [1,32]）
  -h, --help   显示帮助
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：processed=%d failed=%d entries=%d available=%d unavailable=%d\n",
			rr.Summary.Processed, rr.Summary.Failed, rr.Summary.Entries, rr.Summary.Available, rr.Summary.Unavailable,
		)
		if rr.Summary.Failed > 0 {
			for _, p := range rr.Playlists {
				if p.Status != domain.StatusFailed {
					continue
				}
				key := p.Name
				if key == "" {
					// 索引/配置层面的合成条目：用 URL 做定位锚点。
					key = rr.IndexURL
				}
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, p.ErrorCode, p.ErrorMsg)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：processed=%d failed=%d entries=%d available=%d unavailable=%d\n",
		rr.Summary.Processed, rr.Summary.Failed, rr.Summary.Entries, rr.Summary.Available, rr.Summary.Unavailable,
	)
}

func reportForConfigError(ra runArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	rr := domain.RunReport{
		IndexURL:   ra.IndexURL,
		StartedAt:  now,
		FinishedAt: now,
		Playlists: []domain.PlaylistResult{{
			Status:    domain.StatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(processedDir string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(processedDir, "report.json", b)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}

func emitLocations(w io.Writer, eff config.EffectiveConfig, wroteReport bool) {
	// 这几行用于降低“完成后不知道产物在哪”的摩擦，且不影响 stdout JSON 契约。
	if w == nil {
		return
	}
	fmt.Fprintf(w, "m3u: %s\n", eff.M3UDir)
	fmt.Fprintf(w, "processed: %s\n", eff.ProcessedDir)
	if wroteReport {
		fmt.Fprintf(w, "report: %s\n", filepath.Join(eff.ProcessedDir, "report.json"))
	}
}
