package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"statsbot/internal/domain/entities"
)

// ReportRepository 报告历史仓库，把每次广播的快照落盘到Postgres
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository 创建报告历史仓库
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveReport 保存一份完整报告及其所有平台快照
func (r *ReportRepository) SaveReport(ctx context.Context, report *entities.StatsReport) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stats_reports (id, generated_at, ok_count)
		VALUES ($1, $2, $3)
	`, report.ID, report.GeneratedAt, report.OKCount())
	if err != nil {
		return fmt.Errorf("插入报告记录失败: %w", err)
	}

	for _, record := range report.Records {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO metric_snapshots (
				id, report_id, platform, identifier,
				followers, total_views, likes, videos,
				status, detail, fetched_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, uuid.New(), report.ID, record.Platform, record.Identifier,
			record.Followers, record.TotalViews, record.Likes, record.Videos,
			record.Status, record.Detail, record.FetchedAt)
		if err != nil {
			return fmt.Errorf("插入平台快照失败: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// snapshotRow 快照表行
type snapshotRow struct {
	Platform   string         `db:"platform"`
	Identifier sql.NullString `db:"identifier"`
	Followers  sql.NullInt64  `db:"followers"`
	TotalViews sql.NullInt64  `db:"total_views"`
	Likes      sql.NullInt64  `db:"likes"`
	Videos     sql.NullInt64  `db:"videos"`
	Status     string         `db:"status"`
	Detail     sql.NullString `db:"detail"`
	FetchedAt  time.Time      `db:"fetched_at"`
}

// GetLatestReport 获取最近一份已保存的报告
func (r *ReportRepository) GetLatestReport(ctx context.Context) (*entities.StatsReport, error) {
	var header struct {
		ID          uuid.UUID `db:"id"`
		GeneratedAt time.Time `db:"generated_at"`
	}
	err := r.db.GetContext(ctx, &header, `
		SELECT id, generated_at FROM stats_reports
		ORDER BY generated_at DESC LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询最新报告失败: %w", err)
	}

	var rows []snapshotRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT platform, identifier, followers, total_views, likes, videos,
		       status, detail, fetched_at
		FROM metric_snapshots
		WHERE report_id = $1
	`, header.ID)
	if err != nil {
		return nil, fmt.Errorf("查询报告快照失败: %w", err)
	}

	return &entities.StatsReport{
		ID:          header.ID,
		GeneratedAt: header.GeneratedAt,
		Records:     toRecords(rows),
	}, nil
}

// GetPlatformHistory 获取一个平台按时间倒序的历史快照
func (r *ReportRepository) GetPlatformHistory(ctx context.Context, platform entities.Platform, since time.Time, limit int) ([]*entities.MetricRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []snapshotRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT platform, identifier, followers, total_views, likes, videos,
		       status, detail, fetched_at
		FROM metric_snapshots
		WHERE platform = $1 AND fetched_at >= $2
		ORDER BY fetched_at DESC
		LIMIT $3
	`, platform, since, limit)
	if err != nil {
		return nil, fmt.Errorf("查询平台历史失败: %w", err)
	}

	return toRecords(rows), nil
}

// toRecords 把快照行还原成指标记录
func toRecords(rows []snapshotRow) []*entities.MetricRecord {
	records := make([]*entities.MetricRecord, 0, len(rows))
	for _, row := range rows {
		record := &entities.MetricRecord{
			Platform:   entities.Platform(row.Platform),
			Identifier: row.Identifier.String,
			Status:     entities.MetricStatus(row.Status),
			Detail:     row.Detail.String,
			FetchedAt:  row.FetchedAt,
		}
		if row.Followers.Valid {
			record.Followers = entities.Int64Ptr(row.Followers.Int64)
		}
		if row.TotalViews.Valid {
			record.TotalViews = entities.Int64Ptr(row.TotalViews.Int64)
		}
		if row.Likes.Valid {
			record.Likes = entities.Int64Ptr(row.Likes.Int64)
		}
		if row.Videos.Valid {
			record.Videos = entities.Int64Ptr(row.Videos.Int64)
		}
		records = append(records, record)
	}
	return records
}
