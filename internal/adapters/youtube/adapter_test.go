package youtube

import (
	"context"
	"testing"

	"statsbot/internal/adapters"
	"statsbot/internal/domain/entities"
)

const aboutPageFixture = `<html><body><script>
var ytInitialData = {"contents":{"twoColumnBrowseResultsRenderer":{"tabs":[{"tabRenderer":{"content":{"sectionListRenderer":{"contents":[{"aboutChannelRenderer":{"metadata":{"aboutChannelViewModel":{"displayCanonicalChannelUrl":"youtube.com/@testchannel","subscriberCountText":"1.2M subscribers","videoCountText":"342 videos","viewCountText":"456,789,012 views"}}}}]}}}}]}}};
</script></body></html>`

// TestParseAboutPage 验证ytInitialData的提取与关于页字段解析
func TestParseAboutPage(t *testing.T) {
	about, err := parseAboutPage(aboutPageFixture)
	if err != nil {
		t.Fatalf("解析关于页失败: %v", err)
	}

	if about.CanonicalURL != "youtube.com/@testchannel" {
		t.Errorf("期望规范URL youtube.com/@testchannel，实际%q", about.CanonicalURL)
	}
	if about.SubscriberCount == nil || *about.SubscriberCount != 1_200_000 {
		t.Errorf("期望订阅数1200000，实际%v", about.SubscriberCount)
	}
	if about.VideoCount == nil || *about.VideoCount != 342 {
		t.Errorf("期望视频数342，实际%v", about.VideoCount)
	}
	if about.ViewCount == nil || *about.ViewCount != 456_789_012 {
		t.Errorf("期望播放量456789012，实际%v", about.ViewCount)
	}
}

// TestParseAboutPageMissing 验证没有ytInitialData时报错
func TestParseAboutPageMissing(t *testing.T) {
	if _, err := parseAboutPage("<html><body>empty</body></html>"); err == nil {
		t.Error("缺少ytInitialData时应当报错")
	}
}

// TestParseCountText 验证各种计数文案格式
func TestParseCountText(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"1.2M subscribers", 1_200_000},
		{"873K subscribers", 873_000},
		{"1B views", 1_000_000_000},
		{"1,234 videos", 1234},
		{"42", 42},
	}
	for _, tc := range cases {
		got := parseCountText(tc.text)
		if got == nil {
			t.Errorf("解析%q返回nil", tc.text)
			continue
		}
		if *got != tc.want {
			t.Errorf("解析%q期望%d，实际%d", tc.text, tc.want, *got)
		}
	}

	if parseCountText("") != nil {
		t.Error("空文本应返回nil")
	}
	if parseCountText("no numbers here") != nil {
		t.Error("无数字文本应返回nil")
	}
}

// fakeResolver 测试用的固定解析器
type fakeResolver struct {
	id string
}

func (f *fakeResolver) Resolve(ctx context.Context, raw string) (string, error) {
	return f.id, nil
}

// fakeRenderer 测试用的固定渲染器
type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) RenderHTML(ctx context.Context, url string) (string, error) {
	return f.html, f.err
}

// TestBrowserStrategyFetch 验证浏览器策略能从渲染结果构建记录
func TestBrowserStrategyFetch(t *testing.T) {
	s := &BrowserStrategy{
		platform: entities.PlatformYouTubeChannel,
		resolver: &fakeResolver{id: "UCabcdefghijklmnopqrstuv"},
		renderer: &fakeRenderer{html: aboutPageFixture},
		detector: adapters.NewBlockDetector(nil),
	}

	record, err := s.Fetch(context.Background(), "https://youtube.com/@testchannel")
	if err != nil {
		t.Fatalf("采集失败: %v", err)
	}
	if record.Status != entities.StatusOK {
		t.Errorf("期望状态ok，实际%s", record.Status)
	}
	if record.Followers == nil || *record.Followers != 1_200_000 {
		t.Errorf("期望粉丝数1200000，实际%v", record.Followers)
	}
	if record.Platform != entities.PlatformYouTubeChannel {
		t.Errorf("期望平台youtube-channel，实际%s", record.Platform)
	}
}

// TestIsChannelID 验证频道ID形式的判断
func TestIsChannelID(t *testing.T) {
	if !isChannelID("UCabcdefghijklmnopqrstuv") {
		t.Error("合法的UC形式ID应被接受")
	}
	if isChannelID("UCshort") {
		t.Error("过短的ID不应被接受")
	}
	if isChannelID("https://youtube.com/@handle") {
		t.Error("URL不应被当作频道ID")
	}
}
