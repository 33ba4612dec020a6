package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"statsbot/internal/config"
)

// Renderer 页面渲染接口，方便在测试中替换真实浏览器
type Renderer interface {
	// RenderHTML 渲染页面并返回完整HTML
	RenderHTML(ctx context.Context, url string) (string, error)
}

// SessionPool 有上限的浏览器会话池。浏览器进程占用内存很大，
// 即使单平台采集已经串行化，不同平台仍可能同时请求会话，
// 因此用信号量限制整体并发。
type SessionPool struct {
	sem       chan struct{}
	timeout   time.Duration
	execPath  string
	userAgent string
}

// NewSessionPool 创建会话池
func NewSessionPool(cfg config.BrowserConfig) *SessionPool {
	return &SessionPool{
		sem:       make(chan struct{}, cfg.MaxSessions),
		timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		execPath:  cfg.ExecPath,
		userAgent: cfg.UserAgent,
	}
}

// RenderHTML 启动一个无头浏览器会话加载页面并返回渲染后的HTML。
// 会话在任何退出路径上都会被释放。
func (p *SessionPool) RenderHTML(ctx context.Context, url string) (string, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("等待浏览器会话超时: %w", ctx.Err())
	}
	defer func() { <-p.sem }()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if p.execPath != "" {
		opts = append(opts, chromedp.ExecPath(p.execPath))
	}
	if p.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(p.userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		// 等待动态内容注入完成再取整页HTML
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("浏览器渲染页面失败: %w", err)
	}

	return html, nil
}
