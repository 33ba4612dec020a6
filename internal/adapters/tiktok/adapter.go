package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"statsbot/internal/adapters"
	"statsbot/internal/adapters/browser"
	"statsbot/internal/config"
	"statsbot/internal/domain/entities"
)

// TokCountStrategy 通过TokCount第三方统计服务获取TikTok数据的轻量策略。
// TokCount自身有限流，401/403/429一律视为临时封禁。
type TokCountStrategy struct {
	cfg        config.TokCountConfig
	detector   *adapters.BlockDetector
	httpClient *http.Client
}

// NewTokCountStrategy 创建TokCount采集策略
func NewTokCountStrategy(cfg config.TokCountConfig, detector *adapters.BlockDetector) *TokCountStrategy {
	return &TokCountStrategy{
		cfg:      cfg,
		detector: detector,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name 获取策略名称
func (s *TokCountStrategy) Name() string {
	return "tiktok-tokcount"
}

// Fetch 采集TikTok账号统计数据
func (s *TokCountStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	username := strings.TrimPrefix(strings.TrimSpace(profile), "@")
	if username == "" {
		return nil, adapters.NewConfigError("TikTok用户名为空")
	}

	// 第一步：按用户名换取内部用户ID
	userPayload, err := s.get(ctx, "/user/data/"+username)
	if err != nil {
		return nil, err
	}
	var user struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(userPayload, &user); err != nil {
		return nil, fmt.Errorf("解析TokCount用户响应失败: %w", err)
	}
	if user.UserID == "" {
		return nil, fmt.Errorf("TokCount未返回用户ID")
	}

	// 第二步：按用户ID获取统计数据
	statsPayload, err := s.get(ctx, "/user/stats/"+user.UserID)
	if err != nil {
		return nil, err
	}
	var stats struct {
		FollowerCount *int64 `json:"followerCount"`
		LikeCount     *int64 `json:"likeCount"`
		VideoCount    *int64 `json:"videoCount"`
	}
	if err := json.Unmarshal(statsPayload, &stats); err != nil {
		return nil, fmt.Errorf("解析TokCount统计响应失败: %w", err)
	}

	identifier := user.Username
	if identifier == "" {
		identifier = username
	}

	record := entities.NewOKRecord(entities.PlatformTikTok, "@"+identifier)
	record.Followers = stats.FollowerCount
	record.Likes = stats.LikeCount
	record.Videos = stats.VideoCount

	if !record.HasMetrics() {
		return nil, fmt.Errorf("TokCount响应中没有任何统计数据")
	}
	return record, nil
}

// get 发送带签名头的TokCount请求并校验业务层success标记
func (s *TokCountStrategy) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	req.Header.Set("Origin", s.cfg.Origin)
	req.Header.Set("Referer", s.cfg.Referer)
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("x-service", "TokCount")
	req.Header.Set("x-user-agent", s.cfg.UserAgent)
	req.Header.Set("x-antiabuse-ip", antiAbuseIP)
	for key, value := range signHeaders(time.Now()) {
		req.Header.Set(key, value)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求TokCount失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取TokCount响应失败: %w", err)
	}

	if s.detector.IsBlockedStatus(resp.StatusCode) {
		return nil, adapters.NewBlockedError("TokCount返回状态码 %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TokCount返回状态码 %d", resp.StatusCode)
	}

	var envelope struct {
		Success   bool            `json:"success"`
		Challenge bool            `json:"challenge"`
		Message   string          `json:"message"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("TokCount返回了无效的JSON: %w", err)
	}
	if !envelope.Success {
		message := envelope.Message
		if message == "" {
			message = "TokCount返回失败"
		}
		if envelope.Challenge {
			return nil, adapters.NewBlockedError("%s", message)
		}
		return nil, fmt.Errorf("%s", message)
	}

	if len(envelope.Data) > 0 {
		return envelope.Data, nil
	}
	return body, nil
}

// ProfilePageStrategy 直接抓取TikTok个人主页并解析内嵌数据的回退策略
type ProfilePageStrategy struct {
	detector   *adapters.BlockDetector
	httpClient *http.Client
	userAgent  string
}

// NewProfilePageStrategy 创建个人主页采集策略
func NewProfilePageStrategy(detector *adapters.BlockDetector, userAgent string) *ProfilePageStrategy {
	return &ProfilePageStrategy{
		detector: detector,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
	}
}

// Name 获取策略名称
func (s *ProfilePageStrategy) Name() string {
	return "tiktok-profile-page"
}

// Fetch 采集TikTok账号统计数据
func (s *ProfilePageStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	username := strings.TrimPrefix(strings.TrimSpace(profile), "@")
	if username == "" {
		return nil, adapters.NewConfigError("TikTok用户名为空")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.tiktok.com/@"+username, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Referer", "https://www.tiktok.com/")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取TikTok主页失败: %w", err)
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
		return nil, fmt.Errorf("TikTok返回状态码 %d", resp.StatusCode)
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
	return "tiktok-browser"
}

// Fetch 采集TikTok账号统计数据
func (s *BrowserStrategy) Fetch(ctx context.Context, profile string) (*entities.MetricRecord, error) {
	username := strings.TrimPrefix(strings.TrimSpace(profile), "@")
	if username == "" {
		return nil, adapters.NewConfigError("TikTok用户名为空")
	}

	html, err := s.renderer.RenderHTML(ctx, "https://www.tiktok.com/@"+username)
	if err != nil {
		return nil, err
	}
	if blocked := s.detector.Classify(http.StatusOK, html); blocked != nil {
		return nil, blocked
	}

	return buildRecord(username, html)
}

// buildRecord 从主页HTML构建指标记录
func buildRecord(username, html string) (*entities.MetricRecord, error) {
	stats, err := parseProfilePage(html)
	if err != nil {
		return nil, err
	}

	identifier := stats.UniqueID
	if identifier == "" {
		identifier = username
	}

	record := entities.NewOKRecord(entities.PlatformTikTok, "@"+identifier)
	record.Followers = stats.Followers
	record.Likes = stats.Likes
	record.Videos = stats.Videos

	if !record.HasMetrics() {
		return nil, fmt.Errorf("主页中未解析出任何统计数据")
	}
	return record, nil
}
