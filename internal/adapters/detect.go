package adapters

import (
	"net/http"
	"strings"
)

// defaultIndicators 内置的封禁指示词。命中任意一个即认为响应是
// 反爬挑战页而不是正常内容。指示词匹配只是启发式判断，允许通过
// 配置追加新词。
var defaultIndicators = []string{
	"cloudflare",
	"cf-chl",
	"captcha",
	"recaptcha",
	"hcaptcha",
	"challenge-platform",
	"verify you are human",
	"unusual traffic",
	"access denied",
	"请完成验证",
}

// blockedStatusCodes 反爬拦截常用的HTTP状态码
var blockedStatusCodes = map[int]bool{
	http.StatusUnauthorized:       true,
	http.StatusForbidden:          true,
	http.StatusTooManyRequests:    true,
	http.StatusServiceUnavailable: true,
}

// BlockDetector 从失败或可疑的响应中识别封禁
type BlockDetector struct {
	indicators []string
}

// NewBlockDetector 创建封禁识别器，extra会追加到内置指示词之后
func NewBlockDetector(extra []string) *BlockDetector {
	indicators := make([]string, 0, len(defaultIndicators)+len(extra))
	for _, term := range defaultIndicators {
		indicators = append(indicators, strings.ToLower(term))
	}
	for _, term := range extra {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			indicators = append(indicators, term)
		}
	}
	return &BlockDetector{indicators: indicators}
}

// IsBlockedStatus 检查HTTP状态码是否属于反爬拦截
func (d *BlockDetector) IsBlockedStatus(statusCode int) bool {
	return blockedStatusCodes[statusCode]
}

// ScanBody 在响应内容中查找封禁指示词，返回命中的词
func (d *BlockDetector) ScanBody(body string) (string, bool) {
	lower := strings.ToLower(body)
	for _, term := range d.indicators {
		if strings.Contains(lower, term) {
			return term, true
		}
	}
	return "", false
}

// Classify 综合状态码与响应内容判断响应是否为封禁。
// 命中时返回BlockedError，否则返回nil由调用方按普通错误处理。
func (d *BlockDetector) Classify(statusCode int, body string) error {
	if d.IsBlockedStatus(statusCode) {
		return NewBlockedError("HTTP状态码 %d", statusCode)
	}
	if term, hit := d.ScanBody(body); hit {
		return NewBlockedError("响应中包含指示词 %q", term)
	}
	return nil
}
