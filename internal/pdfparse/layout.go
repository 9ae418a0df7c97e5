package pdfparse

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"

	"zipfit/internal/document"
	"zipfit/internal/tablenorm"
)

// lineTolerance is the baseline distance, in points, within which two
// fragments are read as one line.
const lineTolerance = 2.0

type pageBlock struct {
	top   float64
	text  string
	table bool
}

// extractLayout reads positioned text from each page, detects tables from
// fragment alignment and rebuilds the page as markdown in reading order.
func extractLayout(data []byte, keywords []string) ([]document.Element, error) {
	f, err := os.CreateTemp("", "zipfit-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create pdf temp file failed: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write pdf temp file failed: %w", err)
	}

	r, err := reader.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open pdf layout failed: %w", err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("count pdf pages failed: %w", err)
	}

	detector := tables.NewGeometricDetector()
	var elements []document.Element
	for i := 0; i < count; i++ {
		page, err := r.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d failed: %w", i+1, err)
		}
		fragments, err := r.ExtractTextFragments(page)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d text failed: %w", i+1, err)
		}
		width, _ := page.Width()
		height, _ := page.Height()

		mp := model.NewPage(width, height)
		mp.Number = i + 1
		mp.RawText = toModelFragments(fragments)
		found, err := detector.Detect(mp)
		if err != nil {
			return nil, fmt.Errorf("detect pdf page %d tables failed: %w", i+1, err)
		}

		md := tablenorm.CleanText(layoutPage(mp.RawText, found, keywords))
		if strings.TrimSpace(md) == "" {
			continue
		}
		elements = append(elements, ExtractElements(md, i+1)...)
	}
	return elements, nil
}

func toModelFragments(fragments []text.TextFragment) []model.TextFragment {
	out := make([]model.TextFragment, len(fragments))
	for i, f := range fragments {
		out[i] = model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		}
	}
	return out
}

// layoutPage orders tables and text lines top to bottom. Fragments whose
// center lies inside a rendered table are left out of the text flow, and
// tables are rendered through RowsToMarkdown so their header rows are merged.
func layoutPage(fragments []model.TextFragment, found []*model.Table, keywords []string) string {
	var (
		blocks   []pageBlock
		rendered []*model.Table
	)
	for _, t := range found {
		md := tablenorm.RowsToMarkdown(tableRows(t), keywords)
		if md == "" {
			continue
		}
		rendered = append(rendered, t)
		blocks = append(blocks, pageBlock{top: t.BBox.Top(), text: md, table: true})
	}

	var free []model.TextFragment
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) == "" || insideAny(f.BBox.Center(), rendered) {
			continue
		}
		free = append(free, f)
	}
	blocks = append(blocks, groupLines(free)...)

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].top > blocks[j].top })

	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			if blk.table || blocks[i-1].table {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(blk.text)
	}
	return b.String()
}

func tableRows(t *model.Table) [][]string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell.Text)
		}
		rows[i] = cells
	}
	return rows
}

func insideAny(p model.Point, found []*model.Table) bool {
	for _, t := range found {
		if t.BBox.Contains(p) {
			return true
		}
	}
	return false
}

// groupLines clusters fragments by baseline and joins each line left to
// right, inserting a space where the horizontal gap exceeds a fifth of the
// font size.
func groupLines(fragments []model.TextFragment) []pageBlock {
	if len(fragments) == 0 {
		return nil
	}
	sorted := append([]model.TextFragment(nil), fragments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BBox.Y > sorted[j].BBox.Y })

	var (
		blocks []pageBlock
		line   []model.TextFragment
	)
	flush := func() {
		if len(line) == 0 {
			return
		}
		top := line[0].BBox.Top()
		sort.SliceStable(line, func(i, j int) bool { return line[i].BBox.X < line[j].BBox.X })
		var b strings.Builder
		for i, f := range line {
			top = math.Max(top, f.BBox.Top())
			if i > 0 {
				prev := line[i-1]
				gap := f.BBox.X - prev.BBox.Right()
				if gap > prev.FontSize/5 && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(f.Text, " ") {
					b.WriteString(" ")
				}
			}
			b.WriteString(f.Text)
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			blocks = append(blocks, pageBlock{top: top, text: s})
		}
		line = nil
	}

	for _, f := range sorted {
		if len(line) > 0 {
			d := line[0].BBox.Y - f.BBox.Y
			if d > lineTolerance || d < -lineTolerance {
				flush()
			}
		}
		line = append(line, f)
	}
	flush()
	return blocks
}
