package facebook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	followerCountRe = regexp.MustCompile(`"follower_count"\s*:\s*(\d+)`)
	likeCountRe     = regexp.MustCompile(`"page_likers"\s*:\s*\{\s*"global_likers_count"\s*:\s*(\d+)`)
	videoCountRe    = regexp.MustCompile(`"video_count"\s*:\s*\{\s*"count"\s*:\s*(\d+)`)
	// 公开页面上的可见文本形式，作为内嵌JSON缺失时的兜底
	followerTextRe = regexp.MustCompile(`([\d.,]+\s?[KMB]?)\s+followers`)
	likeTextRe     = regexp.MustCompile(`([\d.,]+\s?[KMB]?)\s+likes`)
)

// pageStats 公共主页上解析出的统计数据
type pageStats struct {
	Followers *int64
	Likes     *int64
	Videos    *int64
}

// parsePage 从Facebook公共主页HTML解析统计数据。
// 登出状态下页面仍会内嵌follower_count等计数字段。
func parsePage(html string) (*pageStats, error) {
	stats := &pageStats{
		Followers: matchCount(followerCountRe, html),
		Likes:     matchCount(likeCountRe, html),
		Videos:    matchCount(videoCountRe, html),
	}

	if stats.Followers == nil {
		if m := followerTextRe.FindStringSubmatch(html); m != nil {
			stats.Followers = parseCountText(m[1])
		}
	}
	if stats.Likes == nil {
		if m := likeTextRe.FindStringSubmatch(html); m != nil {
			stats.Likes = parseCountText(m[1])
		}
	}

	if stats.Followers == nil && stats.Likes == nil && stats.Videos == nil {
		return nil, fmt.Errorf("页面中未找到任何计数字段")
	}
	return stats, nil
}

// matchCount 提取第一个捕获组里的整数计数
func matchCount(re *regexp.Regexp, html string) *int64 {
	m := re.FindStringSubmatch(html)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &value
}

// parseCountText 解析带缩写后缀的计数文本，如 "15.3K"
func parseCountText(text string) *int64 {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" {
		return nil
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(text, "K"):
		multiplier = 1_000
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "M"):
		multiplier = 1_000_000
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "B"):
		multiplier = 1_000_000_000
		text = text[:len(text)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil
	}
	result := int64(value * float64(multiplier))
	return &result
}
