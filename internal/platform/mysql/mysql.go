package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const fullTextIndex = "idx_doc_chunks_chunk_text_ft"

func New(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open mysql failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get mysql sql db failed: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping mysql failed: %w", err)
	}

	return db, nil
}

// EnsureFullTextIndex adds an ngram FULLTEXT index over chunk_text so
// Korean text without spaces can still be matched. MySQL keeps the index
// current on every write.
func EnsureFullTextIndex(ctx context.Context, db *gorm.DB, table string) error {
	tx := db.WithContext(ctx)
	if tx.Migrator().HasIndex(table, fullTextIndex) {
		return nil
	}
	stmt := fmt.Sprintf("CREATE FULLTEXT INDEX %s ON %s (chunk_text) WITH PARSER ngram", fullTextIndex, table)
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create fulltext index failed: %w", err)
	}
	return nil
}
