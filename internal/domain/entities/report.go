package entities

import (
	"time"

	"github.com/google/uuid"
)

// StatsReport 一次完整采集周期的聚合报告
type StatsReport struct {
	ID          uuid.UUID       `json:"id"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Records     []*MetricRecord `json:"records"`
}

// NewStatsReport 创建聚合报告
func NewStatsReport(records []*MetricRecord) *StatsReport {
	return &StatsReport{
		ID:          uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Records:     records,
	}
}

// Record 按平台查找报告中的记录
func (r *StatsReport) Record(platform Platform) *MetricRecord {
	for _, rec := range r.Records {
		if rec.Platform == platform {
			return rec
		}
	}
	return nil
}

// OKCount 统计采集成功的平台数量
func (r *StatsReport) OKCount() int {
	count := 0
	for _, rec := range r.Records {
		if rec.Status == StatusOK {
			count++
		}
	}
	return count
}
