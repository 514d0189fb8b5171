package probe

import (
	"context"
	"net/http"

	"github.com/John-Robertt/m3ucheck/internal/domain"
)

// Prober 是对单个 URL 的存活探测能力。
// 做成接口是为了让编排层可注入测试替身（计数并发、固定结论等）。
type Prober interface {
	Probe(ctx context.Context, url string) domain.ProbeResult
}

// HTTPProber 用 HEAD 请求做最廉价的存在性检查（不传输 body）。
//
// 约束：Probe 绝不向调用方抛错——编排层必须能不受任何单次探测结果影响、
// 继续处理剩余条目，所以全部失败形态都折叠进返回值：
// - 200：Reachable
// - 其他已完成的响应（含 3xx/4xx/5xx）：Unreachable
// - 传输层失败（超时/DNS/拒连）：ProbeFailed
type HTTPProber struct {
	Client *http.Client
}

func New(c *http.Client) HTTPProber {
	return HTTPProber{Client: c}
}

func (p HTTPProber) Probe(ctx context.Context, url string) domain.ProbeResult {
	if p.Client == nil || url == "" {
		return domain.ProbeFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return domain.ProbeFailed
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return domain.ProbeFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return domain.Reachable
	}
	return domain.Unreachable
}
