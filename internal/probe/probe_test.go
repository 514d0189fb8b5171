package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/John-Robertt/m3ucheck/internal/domain"
)

func TestProbe_Classification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("期望 HEAD，实际 %s", r.Method)
		}
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/moved":
			w.Header().Set("Location", "/ok")
			w.WriteHeader(http.StatusFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	// 探测语义要求 3xx 也算“已完成的非 200 响应”：不跟随重定向。
	c := srv.Client()
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	p := New(c)

	if got := p.Probe(context.Background(), srv.URL+"/ok"); got != domain.Reachable {
		t.Fatalf("期望 Reachable，实际 %v", got)
	}
	if got := p.Probe(context.Background(), srv.URL+"/gone"); got != domain.Unreachable {
		t.Fatalf("期望 Unreachable，实际 %v", got)
	}
	if got := p.Probe(context.Background(), srv.URL+"/moved"); got != domain.Unreachable {
		t.Fatalf("期望 Unreachable（302 不跟随），实际 %v", got)
	}
	if got := p.Probe(context.Background(), srv.URL+"/boom"); got != domain.Unreachable {
		t.Fatalf("期望 Unreachable，实际 %v", got)
	}
}

func TestProbe_TransportFailureIsProbeFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立刻关掉：连接必然失败

	p := New(&http.Client{Timeout: time.Second})
	if got := p.Probe(context.Background(), srv.URL); got != domain.ProbeFailed {
		t.Fatalf("期望 ProbeFailed，实际 %v", got)
	}
}

func TestProbe_NeverPanicsOnBadInput(t *testing.T) {
	p := New(&http.Client{Timeout: time.Second})
	if got := p.Probe(context.Background(), ""); got != domain.ProbeFailed {
		t.Fatalf("空 URL 应得到 ProbeFailed，实际 %v", got)
	}
	if got := (HTTPProber{}).Probe(context.Background(), "http://x.test/"); got != domain.ProbeFailed {
		t.Fatalf("缺 client 应得到 ProbeFailed，实际 %v", got)
	}
}
