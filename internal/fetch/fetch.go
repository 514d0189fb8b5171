package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes 兜底限制单次抓取的响应体积（索引文档与播放列表都是文本，远小于该值）。
const maxBodyBytes = 16 * 1024 * 1024

// Error 是一次抓取失败的可追溯错误（带 URL 上下文）。
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("抓取 %s 失败：%v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusError 表示来源返回了非 2xx 的 HTTP 状态码。
// 非 2xx 是失败，不是“成功但内容为空”。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Fetcher 是“从 URL 取一段文本”的同步能力，索引文档与每个播放列表共用。
//
// 约束：
// - 不重试（fail-fast）：重试/退避属于调用方的策略层，不属于抓取本身
// - 超时由注入的 client 持有（见 httpx），每次调用都有限时，绝不无限阻塞
type Fetcher struct {
	Client *http.Client
}

func New(c *http.Client) Fetcher {
	return Fetcher{Client: c}
}

// FetchText 抓取 url 并返回 UTF-8 文本内容。
func (f Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	if f.Client == nil {
		return "", &Error{URL: url, Err: errors.New("http client 不能为空")}
	}
	if strings.TrimSpace(url) == "" {
		return "", &Error{URL: url, Err: errors.New("url 不能为空")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{URL: url, Err: &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	return string(b), nil
}
