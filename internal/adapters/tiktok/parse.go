package tiktok

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var universalDataRe = regexp.MustCompile(
	`(?s)<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">(\{.*?\})</script>`)

// profileStats 个人主页上解析出的统计数据
type profileStats struct {
	UniqueID  string
	Followers *int64
	Likes     *int64
	Videos    *int64
}

// parseProfilePage 从TikTok个人主页HTML解析统计数据。
// 页面把完整状态以JSON形式内嵌在rehydration脚本里。
func parseProfilePage(html string) (*profileStats, error) {
	m := universalDataRe.FindStringSubmatch(html)
	if m == nil {
		return nil, fmt.Errorf("页面中未找到__UNIVERSAL_DATA_FOR_REHYDRATION__")
	}

	var data struct {
		DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
	}
	if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
		return nil, fmt.Errorf("解析页面内嵌数据失败: %w", err)
	}

	raw, ok := data.DefaultScope["webapp.user-detail"]
	if !ok {
		return nil, fmt.Errorf("页面数据中缺少webapp.user-detail")
	}

	var detail struct {
		UserInfo struct {
			User struct {
				UniqueID string `json:"uniqueId"`
			} `json:"user"`
			Stats *struct {
				FollowerCount json.Number `json:"followerCount"`
				HeartCount    json.Number `json:"heartCount"`
				Heart         json.Number `json:"heart"`
				VideoCount    json.Number `json:"videoCount"`
			} `json:"stats"`
		} `json:"userInfo"`
	}
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("解析用户详情失败: %w", err)
	}
	if detail.UserInfo.Stats == nil {
		return nil, fmt.Errorf("页面数据中缺少用户统计")
	}

	stats := detail.UserInfo.Stats
	likes := numberPtr(stats.HeartCount)
	if likes == nil {
		likes = numberPtr(stats.Heart)
	}

	return &profileStats{
		UniqueID:  detail.UserInfo.User.UniqueID,
		Followers: numberPtr(stats.FollowerCount),
		Likes:     likes,
		Videos:    numberPtr(stats.VideoCount),
	}, nil
}

// numberPtr 把json.Number转换为*int64，空值或非法值返回nil
func numberPtr(n json.Number) *int64 {
	if n == "" {
		return nil
	}
	value, err := n.Int64()
	if err != nil {
		// 部分字段可能是浮点形式
		f, ferr := n.Float64()
		if ferr != nil {
			return nil
		}
		value = int64(f)
	}
	return &value
}
