package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zipfit/internal/chunker"
	"zipfit/internal/document"
	"zipfit/internal/model"
	"zipfit/internal/pdfparse"
	"zipfit/internal/pkg/pdfextract"
	"zipfit/internal/tablenorm"
)

type IngestService struct {
	announcements AnnouncementStore
	files         FileStore
	chunks        ChunkStore
	embeddings    *EmbeddingService
	parser        *pdfparse.Parser
	normalizer    *tablenorm.Normalizer
	chunker       *chunker.Chunker
	uploadDir     string
	maxBytes      int64
}

type IngestOptions struct {
	UploadDir string
	MaxBytes  int64
}

func NewIngestService(
	announcements AnnouncementStore,
	files FileStore,
	chunks ChunkStore,
	embeddings *EmbeddingService,
	parser *pdfparse.Parser,
	normalizer *tablenorm.Normalizer,
	chk *chunker.Chunker,
	opts IngestOptions,
) *IngestService {
	return &IngestService{
		announcements: announcements,
		files:         files,
		chunks:        chunks,
		embeddings:    embeddings,
		parser:        parser,
		normalizer:    normalizer,
		chunker:       chk,
		uploadDir:     opts.UploadDir,
		maxBytes:      opts.MaxBytes,
	}
}

type IngestInput struct {
	AnnouncementID uint
	FileName       string
	FileType       string
	Data           []byte
}

type IngestResult struct {
	File        model.AnnouncementFile `json:"file"`
	ChunkCount  int                    `json:"chunk_count"`
	TableChunks int                    `json:"table_chunks"`
	QueuedJobs  int                    `json:"queued_jobs"`
}

// Prepare parses an attachment and returns its chunks without touching any
// store.
func (s *IngestService) Prepare(name string, data []byte) ([]document.Chunk, error) {
	return PrepareChunks(s.parser, s.normalizer, s.chunker, name, data)
}

// PrepareChunks runs parse, table normalization and chunking on one file.
func PrepareChunks(p *pdfparse.Parser, n *tablenorm.Normalizer, c *chunker.Chunker, name string, data []byte) ([]document.Chunk, error) {
	elements, err := p.Parse(name, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", name, err)
	}
	for i := range elements {
		if elements[i].Type == document.ElementTable {
			elements[i].Content = n.NormalizeTable(elements[i].Content)
		}
	}
	return c.BuildChunks(elements, filepath.Base(name)), nil
}

// Ingest stores the attachment, replaces the chunks of that file and queues
// their embedding.
func (s *IngestService) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	name := filepath.Base(strings.TrimSpace(in.FileName))
	if in.AnnouncementID == 0 || name == "" || name == "." || len(in.Data) == 0 {
		return nil, ErrInvalidInput
	}
	if s.maxBytes > 0 && int64(len(in.Data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	ann, err := s.announcements.GetByID(ctx, in.AnnouncementID)
	if err != nil {
		return nil, err
	}
	if ann == nil {
		return nil, ErrAnnouncementNotFound
	}

	format, err := pdfparse.DetectFormat(name)
	if err != nil {
		return nil, err
	}
	chunks, err := s.Prepare(name, in.Data)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	path, err := s.save(ann.ID, name, in.Data)
	if err != nil {
		return nil, err
	}
	file := &model.AnnouncementFile{
		AnnouncementID: ann.ID,
		FileName:       name,
		FileType:       in.FileType,
		FilePath:       path,
		FileExt:        string(format),
		FileSize:       int64(len(in.Data)),
		PageCount:      pageCount(format, in.Data, chunks),
	}
	if err := s.files.Upsert(ctx, file); err != nil {
		return nil, err
	}

	rows := make([]model.DocChunk, len(chunks))
	tables := 0
	for i, c := range chunks {
		rows[i] = model.NewDocChunk(file.ID, ann.ID, c)
		if c.Type == document.ElementTable {
			tables++
		}
	}
	if err := s.chunks.ReplaceForFile(ctx, file.ID, rows); err != nil {
		return nil, err
	}

	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	jobs, err := s.embeddings.Enqueue(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &IngestResult{
		File:        *file,
		ChunkCount:  len(rows),
		TableChunks: tables,
		QueuedJobs:  jobs,
	}, nil
}

// DeleteByAnnouncement drops every chunk of the announcement.
func (s *IngestService) DeleteByAnnouncement(ctx context.Context, announcementID uint) error {
	if announcementID == 0 {
		return ErrInvalidInput
	}
	return s.chunks.DeleteByAnnouncementID(ctx, announcementID)
}

// save writes the upload under <dir>/<announcement id>/<name>. With no
// upload dir the returned path is only the logical location.
func (s *IngestService) save(announcementID uint, name string, data []byte) (string, error) {
	rel := filepath.Join(fmt.Sprint(announcementID), name)
	if s.uploadDir == "" {
		return filepath.ToSlash(rel), nil
	}
	path := filepath.Join(s.uploadDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload failed: %w", err)
	}
	return path, nil
}

func pageCount(format pdfparse.Format, data []byte, chunks []document.Chunk) int {
	if format == pdfparse.FormatPDF {
		if n, err := pdfextract.PageCount(data); err == nil {
			return n
		}
	}
	pages := 0
	for _, c := range chunks {
		pages = max(pages, c.Page)
	}
	return pages
}
