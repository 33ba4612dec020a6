package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"statsbot/internal/adapters"
	"statsbot/internal/adapters/browser"
	"statsbot/internal/domain/entities"
)

const aboutPageURLFormat = "https://www.youtube.com/channel/%s/about"

// resolver 频道ID解析接口，方便测试替换
type resolver interface {
	Resolve(ctx context.Context, raw string) (string, error)
}

// AboutPageStrategy 通过HTTP抓取频道关于页并解析内嵌数据的轻量策略
type AboutPageStrategy struct {
	platform   entities.Platform
	resolver   resolver
	detector   *adapters.BlockDetector
	httpClient *http.Client
	userAgent  string
}

// NewAboutPageStrategy 创建关于页采集策略
func NewAboutPageStrategy(platform entities.Platform, res *ChannelResolver, detector *adapters.BlockDetector, userAgent string) *AboutPageStrategy {
	return &AboutPageStrategy{
		platform: platform,
		resolver: res,
		detector: detector,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
	}
}

// Name 获取策略名称
func (s *AboutPageStrategy) Name() string {
	return "youtube-about-page"
}

// Fetch 采集频道统计数据
func (s *AboutPageStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	channelID, err := s.resolver.Resolve(ctx, profile)
	if err != nil {
		return nil, adapters.NewConfigError("无法识别YouTube频道ID: %v", err)
	}

	pageURL := fmt.Sprintf(aboutPageURLFormat, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept-Language", "en")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取频道关于页失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应内容失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if blocked := s.detector.Classify(resp.StatusCode, string(body)); blocked != nil {
			return nil, blocked
		}
		return nil, fmt.Errorf("YouTube返回状态码 %d", resp.StatusCode)
	}
	if blocked := s.detector.Classify(resp.StatusCode, string(body)); blocked != nil {
		return nil, blocked
	}

	return buildRecord(s.platform, channelID, string(body))
}

// BrowserStrategy 用无头浏览器渲染关于页的重量级回退策略。
// 动态注入的场景下HTTP抓取可能拿不到ytInitialData，浏览器渲染可以。
type BrowserStrategy struct {
	platform entities.Platform
	resolver resolver
	renderer browser.Renderer
	detector *adapters.BlockDetector
}

// NewBrowserStrategy 创建浏览器采集策略
func NewBrowserStrategy(platform entities.Platform, res *ChannelResolver, renderer browser.Renderer, detector *adapters.BlockDetector) *BrowserStrategy {
	return &BrowserStrategy{
		platform: platform,
		resolver: res,
		renderer: renderer,
		detector: detector,
	}
}

// Name 获取策略名称
func (s *BrowserStrategy) Name() string {
	return "youtube-browser"
}

// Fetch 采集频道统计数据
func (s *BrowserStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	channelID, err := s.resolver.Resolve(ctx, profile)
	if err != nil {
		return nil, adapters.NewConfigError("无法识别YouTube频道ID: %v", err)
	}

	html, err := s.renderer.RenderHTML(ctx, fmt.Sprintf(aboutPageURLFormat, channelID))
	if err != nil {
		return nil, err
	}
	if blocked := s.detector.Classify(http.StatusOK, html); blocked != nil {
		return nil, blocked
	}

	return buildRecord(s.platform, channelID, html)
}

// buildRecord 从关于页HTML构建指标记录
func buildRecord(platform entities.Platform, channelID, html string) (*entities.MetricRecord, error) {
	about, err := parseAboutPage(html)
	if err != nil {
		return nil, err
	}

	identifier := about.CanonicalURL
	if identifier == "" {
		identifier = channelID
	}

	record := entities.NewOKRecord(platform, identifier)
	record.Followers = about.SubscriberCount
	record.Videos = about.VideoCount
	record.TotalViews = about.ViewCount

	if !record.HasMetrics() {
		return nil, fmt.Errorf("关于页中未解析出任何统计数据")
	}
	return record, nil
}
