package youtube

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	initialDataObjectRe = regexp.MustCompile(`(?s)var ytInitialData = (\{.*?\});`)
	initialDataStringRe = regexp.MustCompile(`(?s)var ytInitialData = '(.*?)';`)
	countRe             = regexp.MustCompile(`^([\d.]+)([KMBkmb]?)`)
)

// extractInitialData 从频道页HTML中提取ytInitialData。
// YouTube有两种内嵌形式：直接的JSON对象，或转义后的字符串字面量。
func extractInitialData(html string) (map[string]interface{}, error) {
	var payload string
	if m := initialDataObjectRe.FindStringSubmatch(html); m != nil {
		payload = m[1]
	} else if m := initialDataStringRe.FindStringSubmatch(html); m != nil {
		unescaped, err := strconv.Unquote(`"` + strings.ReplaceAll(m[1], `"`, `\"`) + `"`)
		if err != nil {
			return nil, fmt.Errorf("转义的ytInitialData解码失败: %w", err)
		}
		payload = unescaped
	} else {
		return nil, fmt.Errorf("页面中未找到ytInitialData")
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("解析ytInitialData失败: %w", err)
	}
	return data, nil
}

// findRenderer 在嵌套的JSON结构中递归查找指定键的对象
func findRenderer(obj interface{}, key string) map[string]interface{} {
	switch v := obj.(type) {
	case map[string]interface{}:
		if found, ok := v[key].(map[string]interface{}); ok {
			return found
		}
		for _, value := range v {
			if result := findRenderer(value, key); result != nil {
				return result
			}
		}
	case []interface{}:
		for _, item := range v {
			if result := findRenderer(item, key); result != nil {
				return result
			}
		}
	}
	return nil
}

// channelAbout 频道关于页上我们关心的字段
type channelAbout struct {
	CanonicalURL    string
	SubscriberCount *int64
	VideoCount      *int64
	ViewCount       *int64
}

// parseAboutPage 从频道关于页HTML解析统计数据
func parseAboutPage(html string) (*channelAbout, error) {
	data, err := extractInitialData(html)
	if err != nil {
		return nil, err
	}

	about := findRenderer(data, "aboutChannelRenderer")
	if about == nil {
		return nil, fmt.Errorf("关于页数据中未找到aboutChannelRenderer")
	}

	metadata, _ := about["metadata"].(map[string]interface{})
	viewModel, _ := metadata["aboutChannelViewModel"].(map[string]interface{})
	if viewModel == nil {
		return nil, fmt.Errorf("关于页数据中未找到aboutChannelViewModel")
	}

	result := &channelAbout{
		SubscriberCount: parseCountText(stringField(viewModel, "subscriberCountText")),
		VideoCount:      parseCountText(stringField(viewModel, "videoCountText")),
		ViewCount:       parseCountText(stringField(viewModel, "viewCountText")),
	}

	if url := stringField(viewModel, "displayCanonicalChannelUrl"); url != "" {
		result.CanonicalURL = url
	} else {
		result.CanonicalURL = stringField(viewModel, "canonicalChannelUrl")
	}

	return result, nil
}

// stringField 从map中读取字符串字段
func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// parseCountText 解析YouTube的计数文案，如 "1.2M subscribers"、"1,234 videos"。
// 无法识别时返回nil。
func parseCountText(text string) *int64 {
	if text == "" {
		return nil
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	candidate := fields[0]
	candidate = strings.ReplaceAll(candidate, " ", "")
	candidate = strings.ReplaceAll(candidate, ",", "")

	if m := countRe.FindStringSubmatch(candidate); m != nil && m[1] != "" {
		number, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			multiplier := float64(1)
			switch strings.ToUpper(m[2]) {
			case "K":
				multiplier = 1_000
			case "M":
				multiplier = 1_000_000
			case "B":
				multiplier = 1_000_000_000
			}
			value := int64(number * multiplier)
			return &value
		}
	}

	// 兜底：只保留数字字符
	var digits strings.Builder
	for _, ch := range candidate {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return nil
	}
	value, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return nil
	}
	return &value
}
