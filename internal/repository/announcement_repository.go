package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zipfit/internal/model"
)

type AnnouncementFilter struct {
	Status  string
	Type    string
	Region  string
	Keyword string
}

type AnnouncementSummary struct {
	Total       int64            `json:"total"`
	ByType      map[string]int64 `json:"by_type"`
	ByStatus    map[string]int64 `json:"by_status"`
	NewThisWeek int64            `json:"new_this_week"`
}

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Upsert inserts the announcement or updates the row with the same URL.
func (r *AnnouncementRepository) Upsert(ctx context.Context, a *model.Announcement) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"corp_code", "title", "type", "detail_type", "region",
			"published_at", "deadline_at", "status", "service_status", "updated_at",
		}),
	}).Create(a).Error
	if err != nil {
		return fmt.Errorf("upsert announcement failed: %w", err)
	}
	// the conflicting row keeps its id, so reload instead of trusting the insert id
	got, err := r.GetByURL(ctx, a.URL)
	if err != nil {
		return err
	}
	if got != nil {
		*a = *got
	}
	return nil
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id uint) (*model.Announcement, error) {
	return r.first(ctx, "get announcement", "id = ?", id)
}

func (r *AnnouncementRepository) GetByURL(ctx context.Context, url string) (*model.Announcement, error) {
	return r.first(ctx, "get announcement by url", "url = ?", url)
}

func (r *AnnouncementRepository) first(ctx context.Context, action, query string, args ...any) (*model.Announcement, error) {
	var a model.Announcement
	if err := r.db.WithContext(ctx).Where(query, args...).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s failed: %w", action, err)
	}
	return &a, nil
}

// List returns one page of announcements, newest first, and the total count
// matching the filter.
func (r *AnnouncementRepository) List(ctx context.Context, f AnnouncementFilter, offset, limit int) ([]model.Announcement, int64, error) {
	q := r.filtered(ctx, f)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count announcements failed: %w", err)
	}

	var list []model.Announcement
	if err := q.Session(&gorm.Session{}).Order("published_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list announcements failed: %w", err)
	}
	return list, total, nil
}

func (r *AnnouncementRepository) filtered(ctx context.Context, f AnnouncementFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Announcement{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Region != "" {
		q = q.Where("region LIKE ?", "%"+escapeLike(f.Region)+"%")
	}
	if f.Keyword != "" {
		q = q.Where("title LIKE ?", "%"+escapeLike(f.Keyword)+"%")
	}
	return q
}

// Summary counts announcements by type and status. An announcement is new
// this week when it was published within seven days of now.
func (r *AnnouncementRepository) Summary(ctx context.Context, now time.Time) (*AnnouncementSummary, error) {
	s := &AnnouncementSummary{ByType: map[string]int64{}, ByStatus: map[string]int64{}}
	db := r.db.WithContext(ctx).Model(&model.Announcement{})

	if err := db.Session(&gorm.Session{}).Count(&s.Total).Error; err != nil {
		return nil, fmt.Errorf("count announcements failed: %w", err)
	}

	type bucket struct {
		Name  string
		Total int64
	}
	group := func(column string, into map[string]int64) error {
		var rows []bucket
		if err := db.Session(&gorm.Session{}).
			Select(column + " AS name, COUNT(*) AS total").
			Group(column).
			Scan(&rows).Error; err != nil {
			return fmt.Errorf("group announcements by %s failed: %w", column, err)
		}
		for _, row := range rows {
			into[row.Name] = row.Total
		}
		return nil
	}
	if err := group("type", s.ByType); err != nil {
		return nil, err
	}
	if err := group("status", s.ByStatus); err != nil {
		return nil, err
	}

	since := now.AddDate(0, 0, -7).Format(time.DateOnly)
	if err := db.Session(&gorm.Session{}).Where("published_at >= ?", since).Count(&s.NewThisWeek).Error; err != nil {
		return nil, fmt.Errorf("count new announcements failed: %w", err)
	}
	return s, nil
}
