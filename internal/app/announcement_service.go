package app

import (
	"context"
	"strings"
	"time"

	"zipfit/internal/model"
	"zipfit/internal/repository"
)

const (
	defaultItemsPerPage = 10
	maxItemsPerPage     = 100
)

type AnnouncementService struct {
	announcements AnnouncementStore
	files         FileStore
	now           func() time.Time
}

func NewAnnouncementService(announcements AnnouncementStore, files FileStore) *AnnouncementService {
	return &AnnouncementService{
		announcements: announcements,
		files:         files,
		now:           time.Now,
	}
}

type ListAnnouncementsInput struct {
	Status       string
	Type         string
	Region       string
	Keyword      string
	ItemsPerPage int
	CurrentPage  int
}

type AnnouncementPage struct {
	Items        []model.Announcement `json:"items"`
	TotalCount   int64                `json:"total_count"`
	TotalPages   int                  `json:"total_pages"`
	CurrentPage  int                  `json:"current_page"`
	ItemsPerPage int                  `json:"items_per_page"`
}

type AnnouncementDetail struct {
	model.Announcement
	Files []model.AnnouncementFile `json:"files"`
}

func (s *AnnouncementService) List(ctx context.Context, in ListAnnouncementsInput) (*AnnouncementPage, error) {
	perPage := in.ItemsPerPage
	if perPage <= 0 {
		perPage = defaultItemsPerPage
	}
	perPage = min(perPage, maxItemsPerPage)
	page := max(in.CurrentPage, 1)

	items, total, err := s.announcements.List(ctx, repository.AnnouncementFilter{
		Status:  strings.TrimSpace(in.Status),
		Type:    strings.TrimSpace(in.Type),
		Region:  strings.TrimSpace(in.Region),
		Keyword: strings.TrimSpace(in.Keyword),
	}, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Announcement{}
	}

	return &AnnouncementPage{
		Items:        items,
		TotalCount:   total,
		TotalPages:   int((total + int64(perPage) - 1) / int64(perPage)),
		CurrentPage:  page,
		ItemsPerPage: perPage,
	}, nil
}

func (s *AnnouncementService) Get(ctx context.Context, id uint) (*AnnouncementDetail, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	ann, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ann == nil {
		return nil, ErrAnnouncementNotFound
	}
	files, err := s.files.ListByAnnouncementID(ctx, id)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []model.AnnouncementFile{}
	}
	return &AnnouncementDetail{Announcement: *ann, Files: files}, nil
}

func (s *AnnouncementService) Summary(ctx context.Context) (*repository.AnnouncementSummary, error) {
	return s.announcements.Summary(ctx, s.now())
}

type UpsertAnnouncementInput struct {
	URL         string
	CorpCode    string
	Title       string
	Type        string
	DetailType  string
	Region      string
	PublishedAt string
	DeadlineAt  string
	Status      string
	Closed      bool
}

// Upsert registers an announcement, keyed by its URL.
func (s *AnnouncementService) Upsert(ctx context.Context, in UpsertAnnouncementInput) (*model.Announcement, error) {
	url := strings.TrimSpace(in.URL)
	title := strings.TrimSpace(in.Title)
	if url == "" || title == "" {
		return nil, ErrInvalidInput
	}
	for _, d := range []string{in.PublishedAt, in.DeadlineAt} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return nil, ErrInvalidInput
		}
	}

	status := model.ServiceStatusOpen
	if in.Closed {
		status = model.ServiceStatusClosed
	}
	ann := &model.Announcement{
		URL:           url,
		CorpCode:      strings.TrimSpace(in.CorpCode),
		Title:         title,
		Type:          strings.TrimSpace(in.Type),
		DetailType:    strings.TrimSpace(in.DetailType),
		Region:        strings.TrimSpace(in.Region),
		PublishedAt:   in.PublishedAt,
		DeadlineAt:    in.DeadlineAt,
		Status:        strings.TrimSpace(in.Status),
		ServiceStatus: status,
	}
	if err := s.announcements.Upsert(ctx, ann); err != nil {
		return nil, err
	}
	return ann, nil
}
