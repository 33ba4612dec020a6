package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"statsbot/internal/config"
)

// NewDBConnection 创建数据库连接
func NewDBConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, nil
}

// EnsureSchema 初始化报告历史表结构，幂等可重复执行
func EnsureSchema(db *sqlx.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS stats_reports (
			id UUID PRIMARY KEY,
			generated_at TIMESTAMPTZ NOT NULL,
			ok_count INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS metric_snapshots (
			id UUID PRIMARY KEY,
			report_id UUID NOT NULL REFERENCES stats_reports(id) ON DELETE CASCADE,
			platform TEXT NOT NULL,
			identifier TEXT,
			followers BIGINT,
			total_views BIGINT,
			likes BIGINT,
			videos BIGINT,
			status TEXT NOT NULL,
			detail TEXT,
			fetched_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_metric_snapshots_platform
			ON metric_snapshots (platform, fetched_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("初始化表结构失败: %w", err)
	}
	return nil
}
