package kwai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var apolloStateRe = regexp.MustCompile(
	`(?s)window\.__APOLLO_STATE__\s*=\s*(\{.*?\})\s*;?\s*</script>`)

// profileStats 个人主页上解析出的统计数据
type profileStats struct {
	UserID    string
	Followers *int64
	Likes     *int64
	Videos    *int64
}

// parseProfilePage 从快手国际版个人主页HTML解析统计数据。
// 页面以Apollo缓存的形式内嵌了用户的计数信息。
func parseProfilePage(html string) (*profileStats, error) {
	m := apolloStateRe.FindStringSubmatch(html)
	if m == nil {
		return nil, fmt.Errorf("页面中未找到__APOLLO_STATE__")
	}

	var state map[string]json.RawMessage
	if err := json.Unmarshal([]byte(m[1]), &state); err != nil {
		return nil, fmt.Errorf("解析Apollo状态失败: %w", err)
	}

	// 扁平缓存里用户条目以 VisionProfile: 开头
	for key, raw := range state {
		if !strings.HasPrefix(key, "VisionProfile:") && !strings.HasPrefix(key, "$ROOT_QUERY.visionProfile") {
			continue
		}
		stats, ok := parseProfileEntry(raw)
		if ok {
			stats.UserID = strings.TrimPrefix(key, "VisionProfile:")
			return stats, nil
		}
	}

	// 新版页面直接内嵌嵌套结构，退化为全量递归查找
	var tree interface{}
	if err := json.Unmarshal([]byte(m[1]), &tree); err == nil {
		if stats := findOwnerCount(tree); stats != nil {
			return stats, nil
		}
	}

	return nil, fmt.Errorf("Apollo状态中缺少用户计数")
}

// parseProfileEntry 解析单个用户缓存条目里的ownerCount
func parseProfileEntry(raw json.RawMessage) (*profileStats, bool) {
	var entry struct {
		OwnerCount *struct {
			Fan    json.RawMessage `json:"fan"`
			Photo  json.RawMessage `json:"photo"`
			Liked  json.RawMessage `json:"liked"`
			Follow json.RawMessage `json:"follow"`
		} `json:"ownerCount"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil || entry.OwnerCount == nil {
		return nil, false
	}

	stats := &profileStats{
		Followers: parseCountValue(entry.OwnerCount.Fan),
		Likes:     parseCountValue(entry.OwnerCount.Liked),
		Videos:    parseCountValue(entry.OwnerCount.Photo),
	}
	if stats.Followers == nil && stats.Likes == nil && stats.Videos == nil {
		return nil, false
	}
	return stats, true
}

// findOwnerCount 递归查找树里第一个ownerCount节点
func findOwnerCount(node interface{}) *profileStats {
	obj, ok := node.(map[string]interface{})
	if ok {
		if count, has := obj["ownerCount"].(map[string]interface{}); has {
			stats := &profileStats{
				Followers: parseCountAny(count["fan"]),
				Likes:     parseCountAny(count["liked"]),
				Videos:    parseCountAny(count["photo"]),
			}
			if stats.Followers != nil || stats.Likes != nil || stats.Videos != nil {
				return stats
			}
		}
		for _, value := range obj {
			if stats := findOwnerCount(value); stats != nil {
				return stats
			}
		}
		return nil
	}
	if arr, ok := node.([]interface{}); ok {
		for _, value := range arr {
			if stats := findOwnerCount(value); stats != nil {
				return stats
			}
		}
	}
	return nil
}

// parseCountValue 解析原始JSON形式的计数，数值和字符串两种形式都出现过
func parseCountValue(raw json.RawMessage) *int64 {
	if len(raw) == 0 {
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		if value, err := asNumber.Int64(); err == nil {
			return &value
		}
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return parseCountText(asString)
	}
	return nil
}

// parseCountAny 解析interface{}形式的计数
func parseCountAny(value interface{}) *int64 {
	switch v := value.(type) {
	case float64:
		n := int64(v)
		return &n
	case string:
		return parseCountText(v)
	default:
		return nil
	}
}

// parseCountText 解析带缩写后缀的计数文本，如 "15.3K"、"1.2w"
func parseCountText(text string) *int64 {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" {
		return nil
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(text, "K"), strings.HasSuffix(text, "k"):
		multiplier = 1_000
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "M"), strings.HasSuffix(text, "m"):
		multiplier = 1_000_000
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "B"), strings.HasSuffix(text, "b"):
		multiplier = 1_000_000_000
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "W"), strings.HasSuffix(text, "w"):
		// 国内计数习惯，1w = 一万
		multiplier = 10_000
		text = text[:len(text)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil
	}
	result := int64(value * float64(multiplier))
	return &result
}
