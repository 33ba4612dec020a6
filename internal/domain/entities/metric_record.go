package entities

import "time"

// Platform 被监控的平台/账号面标识
type Platform string

// 支持的平台常量
const (
	PlatformYouTubeChannel Platform = "youtube-channel"
	PlatformYouTubeShorts  Platform = "youtube-shorts"
	PlatformTikTok         Platform = "tiktok"
	PlatformKwai           Platform = "kwai"
	PlatformFacebookReels  Platform = "facebook-reels"
	PlatformFacebookPage   Platform = "facebook-page"
)

// AllPlatforms 所有已知平台，按报告中的展示顺序排列
var AllPlatforms = []Platform{
	PlatformYouTubeChannel,
	PlatformYouTubeShorts,
	PlatformTikTok,
	PlatformKwai,
	PlatformFacebookReels,
	PlatformFacebookPage,
}

// DisplayName 获取平台的展示名称
func (p Platform) DisplayName() string {
	switch p {
	case PlatformYouTubeChannel:
		return "YouTube"
	case PlatformYouTubeShorts:
		return "YouTube Shorts"
	case PlatformTikTok:
		return "TikTok"
	case PlatformKwai:
		return "Kwai"
	case PlatformFacebookReels:
		return "Facebook Reels"
	case PlatformFacebookPage:
		return "Facebook Page"
	default:
		return string(p)
	}
}

// Valid 检查平台标识是否已知
func (p Platform) Valid() bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// MetricStatus 指标记录状态
type MetricStatus string

// 指标记录状态常量
const (
	StatusOK             MetricStatus = "ok"
	StatusTemporaryBlock MetricStatus = "temporarily_blocked"
	StatusError          MetricStatus = "error"
	StatusNotConfigured  MetricStatus = "not_configured"
)

// MetricRecord 单个平台的一次指标采集结果，创建后不可变
type MetricRecord struct {
	Platform   Platform     `json:"platform"`
	Identifier string       `json:"identifier,omitempty"` // 实际解析到的账号标识，例如 @username
	Followers  *int64       `json:"followers,omitempty"`
	TotalViews *int64       `json:"totalViews,omitempty"`
	Likes      *int64       `json:"likes,omitempty"`
	Videos     *int64       `json:"videos,omitempty"`
	Status     MetricStatus `json:"status"`
	Detail     string       `json:"detail,omitempty"` // 状态非ok时的诊断信息
	FetchedAt  time.Time    `json:"fetchedAt"`
}

// NewOKRecord 创建一条采集成功的指标记录
func NewOKRecord(platform Platform, identifier string) *MetricRecord {
	return &MetricRecord{
		Platform:   platform,
		Identifier: identifier,
		Status:     StatusOK,
		FetchedAt:  time.Now().UTC(),
	}
}

// NewFailedRecord 创建一条采集失败的指标记录，数值字段全部为空
func NewFailedRecord(platform Platform, status MetricStatus, detail string) *MetricRecord {
	return &MetricRecord{
		Platform:  platform,
		Status:    status,
		Detail:    detail,
		FetchedAt: time.Now().UTC(),
	}
}

// HasMetrics 检查记录是否至少包含一个数值字段
func (r *MetricRecord) HasMetrics() bool {
	return r.Followers != nil || r.TotalViews != nil || r.Likes != nil || r.Videos != nil
}

// Int64Ptr 构造数值字段指针的辅助函数
func Int64Ptr(v int64) *int64 {
	return &v
}
