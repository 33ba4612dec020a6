package facebook

import (
	"context"
	"errors"
	"testing"

	"statsbot/internal/adapters"
	"statsbot/internal/domain/entities"
)

const pageFixture = `<!DOCTYPE html><html><body>
<script>{"page_likers":{"global_likers_count":98000},"follower_count":153000,"video_count":{"count":87}}</script>
</body></html>`

const textFixture = `<html><body><span>15.3K followers</span><span>9.8K likes</span></body></html>`

func TestParsePage(t *testing.T) {
	stats, err := parsePage(pageFixture)
	if err != nil {
		t.Fatalf("parsePage失败: %v", err)
	}
	if stats.Followers == nil || *stats.Followers != 153000 {
		t.Errorf("Followers = %v, 期望 153000", stats.Followers)
	}
	if stats.Likes == nil || *stats.Likes != 98000 {
		t.Errorf("Likes = %v, 期望 98000", stats.Likes)
	}
	if stats.Videos == nil || *stats.Videos != 87 {
		t.Errorf("Videos = %v, 期望 87", stats.Videos)
	}
}

func TestParsePageTextFallback(t *testing.T) {
	stats, err := parsePage(textFixture)
	if err != nil {
		t.Fatalf("parsePage失败: %v", err)
	}
	if stats.Followers == nil || *stats.Followers != 15300 {
		t.Errorf("Followers = %v, 期望 15300", stats.Followers)
	}
	if stats.Likes == nil || *stats.Likes != 9800 {
		t.Errorf("Likes = %v, 期望 9800", stats.Likes)
	}
}

func TestParsePageMissing(t *testing.T) {
	if _, err := parsePage("<html><body>empty</body></html>"); err == nil {
		t.Fatal("缺少计数字段时应当返回错误")
	}
}

func TestNormalizeURL(t *testing.T) {
	got, err := normalizeURL("www.facebook.com/somepage")
	if err != nil {
		t.Fatalf("normalizeURL失败: %v", err)
	}
	if got != "https://www.facebook.com/somepage" {
		t.Errorf("normalizeURL = %q", got)
	}

	var cfgErr *adapters.ConfigError
	if _, err := normalizeURL(""); !errors.As(err, &cfgErr) {
		t.Errorf("空地址应返回ConfigError, 实际: %v", err)
	}
	if _, err := normalizeURL("https://example.com/page"); !errors.As(err, &cfgErr) {
		t.Errorf("非Facebook域名应返回ConfigError, 实际: %v", err)
	}
}

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) RenderHTML(ctx context.Context, url string) (string, error) {
	return f.html, f.err
}

func TestBrowserStrategyFetch(t *testing.T) {
	strategy := NewBrowserStrategy(entities.PlatformFacebookPage,
		&fakeRenderer{html: pageFixture}, adapters.NewBlockDetector(nil))

	record, err := strategy.Fetch(context.Background(), "https://www.facebook.com/somepage")
	if err != nil {
		t.Fatalf("Fetch失败: %v", err)
	}
	if record.Platform != entities.PlatformFacebookPage {
		t.Errorf("Platform = %q", record.Platform)
	}
	if record.Followers == nil || *record.Followers != 153000 {
		t.Errorf("Followers = %v, 期望 153000", record.Followers)
	}
}

func TestBrowserStrategyBlocked(t *testing.T) {
	strategy := NewBrowserStrategy(entities.PlatformFacebookReels,
		&fakeRenderer{html: "<html>checkpoint required, verify you are human</html>"},
		adapters.NewBlockDetector(nil))

	_, err := strategy.Fetch(context.Background(), "https://www.facebook.com/reel/somepage")
	var blocked *adapters.BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("封禁页面应返回BlockedError, 实际: %v", err)
	}
}

func TestStrategyNames(t *testing.T) {
	page := NewPageStrategy(entities.PlatformFacebookPage, adapters.NewBlockDetector(nil), "")
	if page.Name() != "facebook-page-web" {
		t.Errorf("Name = %q", page.Name())
	}
	reels := NewBrowserStrategy(entities.PlatformFacebookReels, &fakeRenderer{}, adapters.NewBlockDetector(nil))
	if reels.Name() != "facebook-reels-browser" {
		t.Errorf("Name = %q", reels.Name())
	}
}
