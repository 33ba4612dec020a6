package publisher

import (
	"fmt"
	"strings"
	"time"

	"statsbot/internal/domain/entities"
)

// 报告面向巴西团队，正文使用葡萄牙语
const (
	labelUnavailableBlocked = "Indisponível (bloqueio temporário)"
	labelUnavailableError   = "Indisponível no momento"
	labelNotConfigured      = "Não configurado"
)

// metricLine 报告里的一行指标
type metricLine struct {
	label string
	value *int64
}

// platformEmoji 各平台在报告里的图标
var platformEmoji = map[entities.Platform]string{
	entities.PlatformYouTubeChannel: "▶️",
	entities.PlatformYouTubeShorts:  "🎬",
	entities.PlatformTikTok:         "🎵",
	entities.PlatformKwai:           "📱",
	entities.PlatformFacebookReels:  "🎥",
	entities.PlatformFacebookPage:   "📘",
}

// FormatReport 把聚合报告渲染成Telegram的HTML消息
func FormatReport(report *entities.StatsReport, nextRun time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	b.WriteString("📊 <b>Relatório de Estatísticas</b>\n")

	for _, record := range report.Records {
		b.WriteString("\n")
		b.WriteString(formatSection(record))
	}

	b.WriteString("\n🕒 Última atualização: ")
	b.WriteString(report.GeneratedAt.In(loc).Format("02/01/2006 15:04"))
	b.WriteString("\n⏭ Próxima atualização: ")
	b.WriteString(nextRun.In(loc).Format("02/01/2006 15:04"))
	return b.String()
}

// formatSection 渲染单个平台的段落
func formatSection(record *entities.MetricRecord) string {
	var b strings.Builder

	emoji := platformEmoji[record.Platform]
	if emoji == "" {
		emoji = "📈"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b>\n", emoji, record.Platform.DisplayName()))

	switch record.Status {
	case entities.StatusOK:
		for _, line := range metricLines(record) {
			if line.value == nil {
				continue
			}
			b.WriteString(fmt.Sprintf("• %s: %s\n", line.label, FormatNumber(*line.value)))
		}
	case entities.StatusTemporaryBlock:
		b.WriteString("• " + labelUnavailableBlocked + "\n")
	case entities.StatusNotConfigured:
		b.WriteString("• " + labelNotConfigured + "\n")
	default:
		b.WriteString("• " + labelUnavailableError + "\n")
	}

	return b.String()
}

// metricLines 按平台选择要展示的指标及其顺序
func metricLines(record *entities.MetricRecord) []metricLine {
	switch record.Platform {
	case entities.PlatformYouTubeChannel, entities.PlatformYouTubeShorts:
		return []metricLine{
			{"Inscritos", record.Followers},
			{"Vídeos", record.Videos},
			{"Visualizações", record.TotalViews},
		}
	case entities.PlatformTikTok, entities.PlatformKwai:
		return []metricLine{
			{"Seguidores", record.Followers},
			{"Curtidas", record.Likes},
			{"Vídeos", record.Videos},
		}
	case entities.PlatformFacebookReels, entities.PlatformFacebookPage:
		return []metricLine{
			{"Seguidores", record.Followers},
			{"Curtidas", record.Likes},
		}
	default:
		return []metricLine{
			{"Seguidores", record.Followers},
			{"Curtidas", record.Likes},
			{"Vídeos", record.Videos},
			{"Visualizações", record.TotalViews},
		}
	}
}

// FormatNumber 按葡语习惯用点做千位分隔符格式化整数
func FormatNumber(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}

	digits := fmt.Sprintf("%d", value)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}
