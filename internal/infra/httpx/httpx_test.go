package httpx

import (
	"net/http"
	"testing"
	"time"
)

func TestNewFetchClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewFetchClient("http://127.0.0.1:8080", 0)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
	if !tr.Base.DisableKeepAlives {
		t.Fatalf("期望禁用 keep-alive，但 Base.DisableKeepAlives=false")
	}
	if !tr.DisableKeepAlives {
		t.Fatalf("期望设置 Request.Close=true 的额外保险，但 DisableKeepAlives=false")
	}
}

func TestNewFetchClient_DefaultTimeout(t *testing.T) {
	c, err := NewFetchClient("", 0)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if c.Timeout != DefaultFetchTimeout {
		t.Fatalf("期望默认超时 %v，实际 %v", DefaultFetchTimeout, c.Timeout)
	}
	if c.CheckRedirect != nil {
		t.Fatalf("fetch client 应跟随重定向")
	}

	c2, err := NewFetchClient("", 3*time.Second)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if c2.Timeout != 3*time.Second {
		t.Fatalf("期望 3s，实际 %v", c2.Timeout)
	}
}

func TestNewProbeClient_NoRedirectFollow(t *testing.T) {
	c, err := NewProbeClient("", 0)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if c.Timeout != DefaultProbeTimeout {
		t.Fatalf("期望默认超时 %v，实际 %v", DefaultProbeTimeout, c.Timeout)
	}
	if c.CheckRedirect == nil {
		t.Fatalf("probe client 不应跟随重定向")
	}
	if err := c.CheckRedirect(&http.Request{}, nil); err != http.ErrUseLastResponse {
		t.Fatalf("期望 ErrUseLastResponse，实际 %v", err)
	}
}

func TestNewFetchClient_InvalidProxyURL(t *testing.T) {
	if _, err := NewFetchClient("http://[::1", 0); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}
