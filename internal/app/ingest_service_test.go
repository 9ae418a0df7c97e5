package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipfit/internal/chunker"
	"zipfit/internal/document"
	"zipfit/internal/model"
	"zipfit/internal/pdfparse"
	"zipfit/internal/tablenorm"
)

const noticeMarkdown = `# 행복주택 입주자 모집공고
행복주택은 대학생과 청년, 신혼부부 등 젊은 계층의 주거 안정을 위해 국가 재정과 주택도시기금을 지원받아 공급하는 공공임대주택입니다.
## 공급대상
| 구분 | 면적 | 세대수 |
| --- | --- | --- |
| 46A | 36.9 | 120 |
`

type ingestFixture struct {
	svc    *IngestService
	anns   *fakeAnnouncements
	files  *fakeFiles
	chunks *fakeChunks
	pub    *fakePublisher
}

func newIngestFixture(t *testing.T, opts IngestOptions) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		anns: &fakeAnnouncements{items: map[uint]*model.Announcement{
			3: {ID: 3, Title: "행복주택 모집공고"},
		}},
		files:  &fakeFiles{},
		chunks: newFakeChunks(),
		pub:    &fakePublisher{},
	}
	emb := NewEmbeddingService(f.chunks, &fakeEmbedder{dim: 4}, f.pub, 10)
	f.svc = NewIngestService(
		f.anns, f.files, f.chunks, emb,
		pdfparse.New(nil),
		tablenorm.NewNormalizer(nil),
		chunker.New(chunker.DefaultConfig()),
		opts,
	)
	return f
}

func TestIngestMarkdown(t *testing.T) {
	dir := t.TempDir()
	f := newIngestFixture(t, IngestOptions{UploadDir: dir})

	res, err := f.svc.Ingest(t.Context(), IngestInput{
		AnnouncementID: 3,
		FileName:       "../notice.md",
		FileType:       "공고문",
		Data:           []byte(noticeMarkdown),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.ChunkCount)
	assert.Equal(t, 1, res.TableChunks)
	assert.Equal(t, 1, res.QueuedJobs)
	assert.Equal(t, 2, f.chunks.replaced[7])

	assert.Equal(t, "notice.md", res.File.FileName)
	assert.Equal(t, "md", res.File.FileExt)
	assert.Equal(t, 1, res.File.PageCount)
	stored, err := os.ReadFile(filepath.Join(dir, "3", "notice.md"))
	require.NoError(t, err)
	assert.Equal(t, noticeMarkdown, string(stored))

	require.Len(t, f.pub.payloads, 1)
	assert.Equal(t, []uint{101, 102}, f.pub.payloads[0].(EmbeddingJob).ChunkIDs)

	table := f.chunks.rows[102]
	assert.Equal(t, string(document.ElementTable), table.ChunkType)
	assert.Equal(t, "공급대상", table.Metadata["table_context"])
	assert.Equal(t, uint(3), table.AnnouncementID)
}

func TestIngestErrors(t *testing.T) {
	tests := []struct {
		name string
		in   IngestInput
		want error
	}{
		{"missing announcement id", IngestInput{FileName: "a.md", Data: []byte("x")}, ErrInvalidInput},
		{"empty data", IngestInput{AnnouncementID: 3, FileName: "a.md"}, ErrInvalidInput},
		{"unknown announcement", IngestInput{AnnouncementID: 9, FileName: "a.md", Data: []byte(noticeMarkdown)}, ErrAnnouncementNotFound},
		{"unsupported format", IngestInput{AnnouncementID: 3, FileName: "a.hwp", Data: []byte("x")}, pdfparse.ErrUnsupportedFormat},
		{"too large", IngestInput{AnnouncementID: 3, FileName: "a.md", Data: make([]byte, 2048)}, ErrFileTooLarge},
		{"nothing to chunk", IngestInput{AnnouncementID: 3, FileName: "a.md", Data: []byte("- 1 -")}, ErrNoChunks},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIngestFixture(t, IngestOptions{MaxBytes: 1024})
			_, err := f.svc.Ingest(t.Context(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.chunks.rows)
		})
	}
}

func TestPrepareNormalizesTables(t *testing.T) {
	f := newIngestFixture(t, IngestOptions{})
	md := "## 신청자격\n| 구분 | 소득 기준 |\n| --- | --- |\n| 청년 | 도시 근로자 월평균 소득 100 % |\n"

	chunks, err := f.svc.Prepare("notice.md", []byte(md))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "도시근로자월평균소득100")
	assert.NotContains(t, chunks[0].Text, "도시 근로자")
}

func TestDeleteByAnnouncement(t *testing.T) {
	f := newIngestFixture(t, IngestOptions{})
	require.NoError(t, f.svc.DeleteByAnnouncement(t.Context(), 3))
	assert.Equal(t, []uint{3}, f.chunks.deleted)
	assert.ErrorIs(t, f.svc.DeleteByAnnouncement(t.Context(), 0), ErrInvalidInput)
}
