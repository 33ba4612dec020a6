package kwai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"statsbot/internal/adapters"
	"statsbot/internal/adapters/browser"
	"statsbot/internal/domain/entities"
)

// WebProfileStrategy 直接抓取Kwai个人主页并解析Apollo状态的轻量策略
type WebProfileStrategy struct {
	detector   *adapters.BlockDetector
	httpClient *http.Client
	userAgent  string
}

// NewWebProfileStrategy 创建个人主页采集策略
func NewWebProfileStrategy(detector *adapters.BlockDetector, userAgent string) *WebProfileStrategy {
	return &WebProfileStrategy{
		detector: detector,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
	}
}

// Name 获取策略名称
func (s *WebProfileStrategy) Name() string {
	return "kwai-web-profile"
}

// Fetch 采集Kwai账号统计数据
func (s *WebProfileStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	username := normalizeUsername(profile)
	if username == "" {
		return nil, adapters.NewConfigError("Kwai用户名为空")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL(username), nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Accept-Language", "en")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取Kwai主页失败: %w", err)
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
		return nil, fmt.Errorf("Kwai返回状态码 %d", resp.StatusCode)
	}

	return buildRecord(username, string(body))
}

// BrowserStrategy 用无头浏览器渲染个人主页的重量级回退策略
type BrowserStrategy struct {
	renderer browser.Renderer
	detector *adapters.BlockDetector
}

// NewBrowserStrategy 创建浏览器采集策略
func NewBrowserStrategy(renderer browser.Renderer, detector *adapters.BlockDetector) *BrowserStrategy {
	return &BrowserStrategy{renderer: renderer, detector: detector}
}

// Name 获取策略名称
func (s *BrowserStrategy) Name() string {
	return "kwai-browser"
}

// Fetch 采集Kwai账号统计数据
func (s *BrowserStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	username := normalizeUsername(profile)
	if username == "" {
		return nil, adapters.NewConfigError("Kwai用户名为空")
	}

	html, err := s.renderer.RenderHTML(ctx, profileURL(username))
	if err != nil {
		return nil, err
	}
	if blocked := s.detector.Classify(http.StatusOK, html); blocked != nil {
		return nil, blocked
	}

	return buildRecord(username, html)
}

// normalizeUsername 统一去掉@前缀和首尾空白
func normalizeUsername(profile string) string {
	return strings.TrimPrefix(strings.TrimSpace(profile), "@")
}

func profileURL(username string) string {
	return "https://www.kwai.com/@" + username
}

// buildRecord 从主页HTML构建指标记录
func buildRecord(username, html string) (*entities.MetricRecord, error) {
	stats, err := parseProfilePage(html)
	if err != nil {
		return nil, err
	}

	record := entities.NewOKRecord(entities.PlatformKwai, "@"+username)
	record.Followers = stats.Followers
	record.Likes = stats.Likes
	record.Videos = stats.Videos

	if !record.HasMetrics() {
		return nil, fmt.Errorf("主页中未解析出任何统计数据")
	}
	return record, nil
}
