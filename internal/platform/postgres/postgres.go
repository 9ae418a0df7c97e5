package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func New(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get postgres sql db failed: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping postgres failed: %w", err)
	}

	return db, nil
}

// EnableVector installs the pgvector extension. It must run before tables
// with vector columns are migrated.
func EnableVector(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension failed: %w", err)
	}
	return nil
}

// EnsureSearchColumns adds the generated tsvector column over chunk_text
// and the indexes used by full-text and vector search. The column is
// recomputed by postgres on every insert and update of chunk_text.
func EnsureSearchColumns(ctx context.Context, db *gorm.DB, table string) error {
	stmts := []string{
		fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS fts_vector tsvector
			GENERATED ALWAYS AS (to_tsvector('simple', coalesce(chunk_text, ''))) STORED`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_fts ON %s USING GIN (fts_vector)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_embedding ON %s USING hnsw (embedding vector_cosine_ops)`, table, table),
	}
	tx := db.WithContext(ctx)
	for _, stmt := range stmts {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure search columns failed: %w", err)
		}
	}
	return nil
}
