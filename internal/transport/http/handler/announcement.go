package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"zipfit/internal/app"
	"zipfit/internal/model"
	"zipfit/internal/repository"
	"zipfit/internal/transport/http/response"
)

type AnnouncementService interface {
	List(ctx context.Context, in app.ListAnnouncementsInput) (*app.AnnouncementPage, error)
	Get(ctx context.Context, id uint) (*app.AnnouncementDetail, error)
	Summary(ctx context.Context) (*repository.AnnouncementSummary, error)
	Upsert(ctx context.Context, in app.UpsertAnnouncementInput) (*model.Announcement, error)
}

type Ingester interface {
	Ingest(ctx context.Context, in app.IngestInput) (*app.IngestResult, error)
	DeleteByAnnouncement(ctx context.Context, announcementID uint) error
}

type Reembedder interface {
	Reembed(ctx context.Context, announcementID uint) (int, error)
}

type AnnouncementHandler struct {
	announcements AnnouncementService
	ingest        Ingester
	embeddings    Reembedder
	maxUpload     int64
}

type UpsertAnnouncementRequest struct {
	URL         string `json:"url" binding:"required,max=1000"`
	CorpCode    string `json:"corp_code" binding:"max=10"`
	Title       string `json:"title" binding:"required,max=200"`
	Type        string `json:"type" binding:"max=50"`
	DetailType  string `json:"detail_type" binding:"max=20"`
	Region      string `json:"region" binding:"max=50"`
	PublishedAt string `json:"published_at"`
	DeadlineAt  string `json:"deadline_at"`
	Status      string `json:"status" binding:"max=20"`
	Closed      bool   `json:"closed"`
}

type listAnnouncementsQuery struct {
	Status       string `form:"status"`
	Type         string `form:"type"`
	Region       string `form:"region"`
	Keyword      string `form:"keyword"`
	ItemsPerPage int    `form:"items_per_page"`
	CurrentPage  int    `form:"current_page"`
}

func NewAnnouncementHandler(announcements AnnouncementService, ingest Ingester, embeddings Reembedder, maxUpload int64) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcements: announcements,
		ingest:        ingest,
		embeddings:    embeddings,
		maxUpload:     maxUpload,
	}
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	var q listAnnouncementsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid query parameters")
		return
	}

	page, err := h.announcements.List(c.Request.Context(), app.ListAnnouncementsInput{
		Status:       q.Status,
		Type:         q.Type,
		Region:       q.Region,
		Keyword:      q.Keyword,
		ItemsPerPage: q.ItemsPerPage,
		CurrentPage:  q.CurrentPage,
	})
	if err != nil {
		writeError(c, err, "list announcements failed")
		return
	}
	response.OK(c, page)
}

func (h *AnnouncementHandler) Summary(c *gin.Context) {
	summary, err := h.announcements.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err, "announcement summary failed")
		return
	}
	response.OK(c, summary)
}

func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, ok := announcementID(c)
	if !ok {
		return
	}
	detail, err := h.announcements.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "get announcement failed")
		return
	}
	response.OK(c, detail)
}

func (h *AnnouncementHandler) Upsert(c *gin.Context) {
	var req UpsertAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	ann, err := h.announcements.Upsert(c.Request.Context(), app.UpsertAnnouncementInput{
		URL:         req.URL,
		CorpCode:    req.CorpCode,
		Title:       req.Title,
		Type:        req.Type,
		DetailType:  req.DetailType,
		Region:      req.Region,
		PublishedAt: req.PublishedAt,
		DeadlineAt:  req.DeadlineAt,
		Status:      req.Status,
		Closed:      req.Closed,
	})
	if err != nil {
		writeError(c, err, "upsert announcement failed")
		return
	}
	response.OK(c, ann)
}

// UploadFile takes a multipart "file" field and an optional "file_type".
func (h *AnnouncementHandler) UploadFile(c *gin.Context) {
	id, ok := announcementID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		writeError(c, app.ErrFileTooLarge, "upload failed")
		return
	}

	f, err := header.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open upload failed")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read upload failed")
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), app.IngestInput{
		AnnouncementID: id,
		FileName:       header.Filename,
		FileType:       c.PostForm("file_type"),
		Data:           data,
	})
	if err != nil {
		writeError(c, err, "ingest file failed")
		return
	}
	response.OK(c, result)
}

func (h *AnnouncementHandler) Reembed(c *gin.Context) {
	id, ok := announcementID(c)
	if !ok {
		return
	}
	n, err := h.embeddings.Reembed(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "reembed failed")
		return
	}
	response.OK(c, gin.H{"announcement_id": id, "queued_chunks": n})
}

func (h *AnnouncementHandler) DeleteChunks(c *gin.Context) {
	id, ok := announcementID(c)
	if !ok {
		return
	}
	if err := h.ingest.DeleteByAnnouncement(c.Request.Context(), id); err != nil {
		writeError(c, err, "delete chunks failed")
		return
	}
	response.OK(c, gin.H{"announcement_id": id})
}

func announcementID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid announcement id")
		return 0, false
	}
	return uint(id64), true
}
