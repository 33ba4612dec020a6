package facebook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"statsbot/internal/adapters"
	"statsbot/internal/adapters/browser"
	"statsbot/internal/domain/entities"
)

// PageStrategy 直接抓取Facebook公共主页的轻量策略。
// 主页和Reels主页共用同一套解析逻辑，由platform区分记录归属。
type PageStrategy struct {
	platform   entities.Platform
	detector   *adapters.BlockDetector
	httpClient *http.Client
	userAgent  string
}

// NewPageStrategy 创建公共主页采集策略
func NewPageStrategy(platform entities.Platform, detector *adapters.BlockDetector, userAgent string) *PageStrategy {
	return &PageStrategy{
		platform: platform,
		detector: detector,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
	}
}

// Name 获取策略名称
func (s *PageStrategy) Name() string {
	return string(s.platform) + "-web"
}

// Fetch 采集Facebook主页统计数据
func (s *PageStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	pageURL, err := normalizeURL(profile)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Accept-Language", "en")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取Facebook主页失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应内容失败: %w", err)
	}

	if blocked := s.detector.Classify(resp.StatusCode, string(body)); blocked != nil {
		return nil, blocked
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Facebook返回状态码 %d", resp.StatusCode)
	}

	return buildRecord(s.platform, pageURL, string(body))
}

// BrowserStrategy 用无头浏览器渲染主页的重量级回退策略
type BrowserStrategy struct {
	platform entities.Platform
	renderer browser.Renderer
	detector *adapters.BlockDetector
}

// NewBrowserStrategy 创建浏览器采集策略
func NewBrowserStrategy(platform entities.Platform, renderer browser.Renderer, detector *adapters.BlockDetector) *BrowserStrategy {
	return &BrowserStrategy{platform: platform, renderer: renderer, detector: detector}
}

// Name 获取策略名称
func (s *BrowserStrategy) Name() string {
	return string(s.platform) + "-browser"
}

// Fetch 采集Facebook主页统计数据
func (s *BrowserStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	pageURL, err := normalizeURL(profile)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.RenderHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if blocked := s.detector.Classify(http.StatusOK, html); blocked != nil {
		return nil, blocked
	}

	return buildRecord(s.platform, pageURL, html)
}

// normalizeURL 校验并规整主页地址，允许省略协议
func normalizeURL(profile string) (string, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return "", adapters.NewConfigError("Facebook主页地址为空")
	}
	if !strings.HasPrefix(profile, "http://") && !strings.HasPrefix(profile, "https://") {
		profile = "https://" + profile
	}
	parsed, err := url.Parse(profile)
	if err != nil || parsed.Host == "" {
		return "", adapters.NewConfigError("Facebook主页地址无效: %s", profile)
	}
	if !strings.Contains(parsed.Host, "facebook.com") {
		return "", adapters.NewConfigError("不是Facebook域名: %s", parsed.Host)
	}
	return parsed.String(), nil
}

// buildRecord 从主页HTML构建指标记录
func buildRecord(platform entities.Platform, pageURL, html string) (*entities.MetricRecord, error) {
	stats, err := parsePage(html)
	if err != nil {
		return nil, err
	}

	record := entities.NewOKRecord(platform, pageURL)
	record.Followers = stats.Followers
	record.Likes = stats.Likes
	record.Videos = stats.Videos

	if !record.HasMetrics() {
		return nil, fmt.Errorf("主页中未解析出任何统计数据")
	}
	return record, nil
}
