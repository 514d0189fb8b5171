package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// DefaultIndexURL 是索引文档的最终默认值（iptv-org 的 raw README）。
	DefaultIndexURL = "https://raw.githubusercontent.com/iptv-org/iptv/master/README.md"
	// DefaultExtractor 是提取策略的最终默认值（当 CLI 与配置文件都未指定时）。
	DefaultExtractor = "table"
	// DefaultWorkers 是 worker 池容量的内置默认值。
	DefaultWorkers = 5

	DefaultM3UDir       = "m3u_files"
	DefaultProcessedDir = "processed"

	DefaultFetchTimeoutMs = 10000
	DefaultProbeTimeoutMs = 5000
)

// CLIArgs 只包含 CLI 暴露的入口（index-url/extractor/workers），并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --workers 必须能覆盖 config.workers。
type CLIArgs struct {
	IndexURL string

	Extractor    string
	ExtractorSet bool

	Workers    int
	WorkersSet bool
}

// FileConfig 对应 m3ucheck.json 的解析结构。
type FileConfig struct {
	IndexURL       string       `json:"index_url"`
	Extractor      string       `json:"extractor"`
	Workers        int          `json:"workers"`
	M3UDir         string       `json:"m3u_dir"`
	ProcessedDir   string       `json:"processed_dir"`
	FetchTimeoutMs int          `json:"fetch_timeout_ms"`
	ProbeTimeoutMs int          `json:"probe_timeout_ms"`
	Proxy          *ProxyConfig `json:"proxy"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	IndexURL  string
	Extractor string
	Workers   int

	M3UDir       string
	ProcessedDir string

	FetchTimeout time.Duration
	ProbeTimeout time.Duration

	ProxyURL string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取 <cwd>/m3ucheck.json（可选），然后与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// - index_url：CLI 位置参数 > config > 默认 DefaultIndexURL
// - extractor：CLI > config > 默认 table
// - workers：CLI > config > 默认 5（范围 [1,32]，超出截断）
// - 其他字段：仅由 config 控制（CLI 不暴露）
//
// 配置文件不是必选：每个字段都有可用的内置默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, "m3ucheck.json")
	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// index_url：CLI > config > 默认
	indexURL := DefaultIndexURL
	if strings.TrimSpace(fc.IndexURL) != "" {
		indexURL = strings.TrimSpace(fc.IndexURL)
	}
	if strings.TrimSpace(cli.IndexURL) != "" {
		indexURL = strings.TrimSpace(cli.IndexURL)
	}
	if err := validateHTTPURL("index_url", indexURL); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// extractor：CLI > config > 默认
	extractor := DefaultExtractor
	if cli.ExtractorSet {
		extractor = cli.Extractor
	} else if strings.TrimSpace(fc.Extractor) != "" {
		extractor = fc.Extractor
	}
	if err := validateExtractor(extractor); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// workers：CLI > config > 默认；范围建议 [1,32]，超出截断。
	workers := fc.Workers
	if cli.WorkersSet {
		workers = cli.Workers
	}
	if workers == 0 {
		workers = DefaultWorkers
	}
	if workers < 1 {
		workers = 1
	}
	if workers > 32 {
		workers = 32
	}

	m3uDir := fc.M3UDir
	if strings.TrimSpace(m3uDir) == "" {
		m3uDir = DefaultM3UDir
	}
	processedDir := fc.ProcessedDir
	if strings.TrimSpace(processedDir) == "" {
		processedDir = DefaultProcessedDir
	}
	m3uDir = absCleanFrom(cwdAbs, m3uDir)
	processedDir = absCleanFrom(cwdAbs, processedDir)
	if m3uDir == processedDir {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("m3u_dir 与 processed_dir 不能是同一目录：%q", m3uDir)}
	}

	fetchMs := fc.FetchTimeoutMs
	if fetchMs <= 0 {
		fetchMs = DefaultFetchTimeoutMs
	}
	probeMs := fc.ProbeTimeoutMs
	if probeMs <= 0 {
		probeMs = DefaultProbeTimeoutMs
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("proxy.url 无效：%w", err)}
		}
	}

	return EffectiveConfig{
		IndexURL:     indexURL,
		Extractor:    strings.ToLower(strings.TrimSpace(extractor)),
		Workers:      workers,
		M3UDir:       m3uDir,
		ProcessedDir: processedDir,
		FetchTimeout: time.Duration(fetchMs) * time.Millisecond,
		ProbeTimeout: time.Duration(probeMs) * time.Millisecond,
		ProxyURL:     proxyURL,
	}, nil
}

func validateExtractor(e string) error {
	switch strings.ToLower(strings.TrimSpace(e)) {
	case "table", "regex":
		return nil
	case "":
		return fmt.Errorf("extractor 不能为空")
	default:
		return fmt.Errorf("extractor 只能是 table 或 regex，实际是 %q", e)
	}
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", field, raw)
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误：全部字段走默认值）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
