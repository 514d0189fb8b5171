package run

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/John-Robertt/m3ucheck/internal/config"
	"github.com/John-Robertt/m3ucheck/internal/domain"
	"github.com/John-Robertt/m3ucheck/internal/extract"
	"github.com/John-Robertt/m3ucheck/internal/fetch"
	"github.com/John-Robertt/m3ucheck/internal/infra/httpx"
	"github.com/John-Robertt/m3ucheck/internal/m3u"
	"github.com/John-Robertt/m3ucheck/internal/probe"
	"github.com/John-Robertt/m3ucheck/internal/store"
)

// Execute 执行一次完整的“发现 -> 下载 -> 校验 -> 分区落盘”流水线，并返回对外稳定的 RunReport。
//
// 错误分层（硬约束）：
// - 索引文档层面的错误是 run 级致命（抓不到/零条记录：没有可处理对象）
// - 播放列表层面的错误只影响该列表（下载/落盘失败：记录并跳过，其余继续）
// - 条目层面的探测失败从不向上传播（折叠进 ProbeResult）
func Execute(ctx context.Context, eff config.EffectiveConfig, reg extract.Registry, prober probe.Prober) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, reg, prober, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
// prober 为 nil 时按 eff 构造默认的 HEAD 探测器；测试可注入替身。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, reg extract.Registry, prober probe.Prober, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		IndexURL:  eff.IndexURL,
		StartedAt: started,
		Playlists: make([]domain.PlaylistResult, 0, 128),
	}

	fetchClient, err := httpx.NewFetchClient(eff.ProxyURL, eff.FetchTimeout)
	if err != nil {
		return finishFatal(&rr, domain.ErrCodeConfigInvalid, fmt.Sprintf("proxy.url 无效：%v", err))
	}
	fetcher := fetch.New(fetchClient)

	if prober == nil {
		probeClient, e := httpx.NewProbeClient(eff.ProxyURL, eff.ProbeTimeout)
		if e != nil {
			return finishFatal(&rr, domain.ErrCodeConfigInvalid, fmt.Sprintf("proxy.url 无效：%v", e))
		}
		prober = probe.New(probeClient)
	}

	ext, ok := reg.Get(eff.Extractor)
	if !ok {
		return finishFatal(&rr, domain.ErrCodeConfigInvalid, fmt.Sprintf("extractor 未注册：%q", eff.Extractor))
	}

	// 1) 索引文档：抓不到就没有可处理对象，整个 run 失败。
	fetchStarted := time.Now()
	doc, err := fetcher.FetchText(ctx, eff.IndexURL)
	if err != nil {
		return finishFatal(&rr, domain.ErrCodeIndexFetchFailed, fmt.Sprintf("抓取索引文档失败：%v", err))
	}
	if obs != nil {
		obs.OnPhaseDone("fetch_index", map[string]any{"bytes": len(doc)}, time.Since(fetchStarted))
	}

	// 2) 提取 name -> url（同名 last-write-wins 已由 extractor 契约保证）。
	extractStarted := time.Now()
	links := ext.Extract([]byte(doc))
	if obs != nil {
		obs.OnPhaseDone("extract", map[string]any{"records": len(links)}, time.Since(extractStarted))
	}
	if len(links) == 0 {
		return finishFatal(&rr, domain.ErrCodeExtractEmpty, "索引文档中没有可提取的播放列表记录")
	}

	st := store.New(eff.M3UDir, eff.ProcessedDir)
	if err := st.EnsureDirs(); err != nil {
		return finishFatal(&rr, domain.ErrCodeIOFailed, fmt.Sprintf("创建输出目录失败：%v", err))
	}

	// 3) 顺序下载每个播放列表。单个失败只记录该名字并跳过，绝不中断其余下载。
	//    名字排序保证跨平台的确定顺序（map 迭代顺序不可依赖）。
	names := make([]string, 0, len(links))
	for n := range links {
		names = append(names, n)
	}
	sort.Strings(names)

	downloadStarted := time.Now()
	downloaded := make([]domain.NamedResource, 0, len(names))
	for _, n := range names {
		u := links[n]
		text, err := fetcher.FetchText(ctx, u)
		if err != nil {
			rr.Playlists = append(rr.Playlists, domain.PlaylistResult{
				Name:      n,
				URL:       u,
				Status:    domain.StatusFailed,
				ErrorCode: domain.ErrCodeDownloadFailed,
				ErrorMsg:  fmt.Sprintf("下载播放列表失败：%v", err),
			})
			continue
		}
		if err := st.WritePlaylist(n, text); err != nil {
			rr.Playlists = append(rr.Playlists, domain.PlaylistResult{
				Name:      n,
				URL:       u,
				Status:    domain.StatusFailed,
				ErrorCode: domain.ErrCodeIOFailed,
				ErrorMsg:  fmt.Sprintf("保存播放列表失败：%v", err),
			})
			continue
		}
		downloaded = append(downloaded, domain.NamedResource{Name: n, URL: u})
	}
	if obs != nil {
		obs.OnPhaseDone("download", map[string]any{
			"downloaded": len(downloaded),
			"failed":     len(names) - len(downloaded),
		}, time.Since(downloadStarted))
	}

	// 4) 校验阶段：按播放列表并发（worker pool），列表内条目串行探测。
	//    串行保证分区顺序恒等于解析顺序，且并发探测数的上界就是 workers。
	workers := eff.Workers
	if workers < 1 {
		workers = 1
	}

	if obs != nil {
		obs.OnPhaseDone("check", map[string]any{
			"workers":         workers,
			"total_playlists": len(downloaded),
		}, 0)
	}

	type execResult struct {
		res domain.PlaylistResult
		dur time.Duration
	}

	jobs := make(chan domain.NamedResource)
	results := make(chan execResult, len(downloaded))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for res := range jobs {
				oneStarted := time.Now()
				r := checkOne(ctx, st, prober, res)
				results <- execResult{res: r, dur: time.Since(oneStarted)}
			}
		}()
	}

	go func() {
		for _, res := range downloaded {
			jobs <- res
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	// 每个提交的任务都必须被收账：results 关闭前循环不会退出，
	// 单个列表失败也不会阻止其余列表完成与落盘。
	done := 0
	for r := range results {
		done++
		rr.Playlists = append(rr.Playlists, r.res)
		if obs != nil {
			obs.OnPlaylistDone(done, len(downloaded), r.res.Name, r.res, r.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// checkOne 处理一个已下载的播放列表：解析 -> 逐条探测 -> 分区落盘。
// 返回的 PlaylistResult 由当前任务独占，直到写进 report 前没有任何共享。
func checkOne(ctx context.Context, st store.Store, prober probe.Prober, res domain.NamedResource) domain.PlaylistResult {
	out := domain.PlaylistResult{
		Name:   res.Name,
		URL:    res.URL,
		Status: domain.StatusProcessed, // 失败时覆盖
	}

	text, ok, err := st.ReadPlaylist(res.Name)
	if err != nil || !ok {
		out.Status = domain.StatusFailed
		out.ErrorCode = domain.ErrCodeIOFailed
		out.ErrorMsg = fmt.Sprintf("读取已下载的播放列表失败：exists=%v err=%v", ok, err)
		return out
	}

	entries := m3u.Parse(text)
	out.Entries = len(entries)

	// 稳定分区：available/unavailable 内部顺序均等于解析顺序，不重排。
	available := make([]domain.PlaylistEntry, 0, len(entries))
	unavailable := make([]domain.PlaylistEntry, 0, len(entries))
	for _, e := range entries {
		r := prober.Probe(ctx, e.URL)
		if r.Available() {
			available = append(available, e)
			continue
		}
		unavailable = append(unavailable, e)
		if r == domain.ProbeFailed {
			// 与“确认不可达”分开计数：分区口径相同，诊断口径不同。
			out.ProbeFailed++
		}
	}
	out.Available = len(available)
	out.Unavailable = len(unavailable)

	// 两个分区独立落盘：一个失败不应吞掉另一个的写入。
	errA := st.WriteAvailable(res.Name, m3u.FormatEntries(available))
	errU := st.WriteUnavailable(res.Name, m3u.FormatEntries(unavailable))
	if errA != nil || errU != nil {
		out.Status = domain.StatusFailed
		out.ErrorCode = domain.ErrCodePersistFailed
		out.ErrorMsg = persistErrMsg(errA, errU)
	}
	return out
}

func persistErrMsg(errA, errU error) string {
	switch {
	case errA != nil && errU != nil:
		return fmt.Sprintf("写入分区失败：available：%v；unavailable：%v", errA, errU)
	case errA != nil:
		return fmt.Sprintf("写入 available 分区失败：%v", errA)
	default:
		return fmt.Sprintf("写入 unavailable 分区失败：%v", errU)
	}
}

// finishFatal 以一条合成的 name=="" 条目结束 run（config/索引层面的致命错误）。
func finishFatal(rr *domain.RunReport, code, msg string) domain.RunReport {
	rr.Playlists = append(rr.Playlists, domain.PlaylistResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	})
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return *rr
}
