package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"
)

// ChannelResolver 将用户配置的频道URL/ID解析为规范的频道ID（UC开头）。
// 解析顺序：直接的UC形式ID、URL路径中的UC段、yt-dlp元数据探测。
type ChannelResolver struct {
	binaryPath string
	timeout    time.Duration
}

// NewChannelResolver 创建频道ID解析器，binaryPath为空时默认使用PATH中的yt-dlp
func NewChannelResolver(binaryPath string) *ChannelResolver {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	return &ChannelResolver{
		binaryPath: binaryPath,
		timeout:    2 * time.Minute,
	}
}

// Resolve 解析频道ID
func (r *ChannelResolver) Resolve(ctx context.Context, raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if isChannelID(candidate) {
		return candidate, nil
	}

	if parsed, err := url.Parse(candidate); err == nil {
		segments := strings.Split(parsed.Path, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if isChannelID(segments[i]) {
				return segments[i], nil
			}
		}
	}

	return r.probe(ctx, candidate)
}

// probe 用yt-dlp提取频道元数据中的channel_id
func (r *ChannelResolver) probe(ctx context.Context, channelURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binaryPath,
		"--dump-single-json", "--flat-playlist", "--skip-download", "--no-warnings",
		"--playlist-items", "0", channelURL)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp探测频道失败: %w, stderr: %s", err, stderr.String())
	}

	var info struct {
		ChannelID  string `json:"channel_id"`
		Channel    string `json:"channel"`
		UploaderID string `json:"uploader_id"`
		Uploader   string `json:"uploader"`
	}
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		return "", fmt.Errorf("解析yt-dlp输出失败: %w", err)
	}

	for _, candidate := range []string{info.ChannelID, info.Channel, info.UploaderID, info.Uploader} {
		if isChannelID(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("yt-dlp输出中未找到频道ID")
}

// isChannelID 检查字符串是否为UC开头的频道ID
func isChannelID(s string) bool {
	return strings.HasPrefix(s, "UC") && len(s) >= 24
}
