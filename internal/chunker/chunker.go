// Package chunker splits parsed submission documents into overlapping,
// provenance-tagged chunks for indexing and retrieval.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

// DefaultSize is the default sliding window size in characters.
const DefaultSize = 1000

// DefaultOverlap is the default overlap between windows in characters.
const DefaultOverlap = 200

// DefaultTOCTailPages is how many pages past its start the final
// table-of-contents entry is assumed to extend.
const DefaultTOCTailPages = 5

// DefaultResplitMultiplier is the section re-split threshold as a
// multiple of the window size.
const DefaultResplitMultiplier = 2

// sectionHeadLimit bounds how far into a window section detection looks.
const sectionHeadLimit = 500

// sectionPattern maps a header regex to its canonical section label.
// Patterns are tried in order; the first match wins.
type sectionPattern struct {
	re    *regexp.Regexp
	label string
}

var sectionPatterns = []sectionPattern{
	{regexp.MustCompile(`(?i)technology\s*overview`), "technology overview"},
	{regexp.MustCompile(`(?i)prior\s*art|existing\s*technology|problem`), "prior art/problems"},
	{regexp.MustCompile(`(?i)new\s*technology\s*description`), "new technology"},
	{regexp.MustCompile(`(?i)comparative\s*analysis`), "comparative analysis"},
	{regexp.MustCompile(`(?i)performance\s*test|verification`), "performance testing"},
	{regexp.MustCompile(`(?i)field\s*application|track\s*record`), "field application record"},
	{regexp.MustCompile(`(?i)economic\s*analysis`), "economic analysis"},
	{regexp.MustCompile(`(?i)construction\s*method`), "construction method"},
	{regexp.MustCompile(`(?i)quality|safety\s*management`), "quality/safety management"},
	{regexp.MustCompile(`(?i)maintenance`), "maintenance"},
	{regexp.MustCompile(`(?i)patent|intellectual\s*property`), "patents/IP"},
	{regexp.MustCompile(`(?i)conclusion|expected\s*effect`), "conclusions/expected effects"},
}

// Chunker splits documents with a sliding window, optionally guided by
// the document's table of contents.
type Chunker struct {
	size        int
	overlap     int
	tocTail     int
	resplitMult int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the window size in characters.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithTOCTailPages sets the page span assumed for the final
// table-of-contents entry.
func WithTOCTailPages(pages int) Option {
	return func(c *Chunker) {
		if pages > 0 {
			c.tocTail = pages
		}
	}
}

// WithResplitMultiplier sets the threshold, as a multiple of the window
// size, above which a section is re-split into sub-chunks.
func WithResplitMultiplier(mult int) Option {
	return func(c *Chunker) {
		if mult > 0 {
			c.resplitMult = mult
		}
	}
}

// New creates a chunker. Overlap must be strictly smaller than the
// window size; anything else would give a non-positive stride and is
// rejected as a configuration error rather than clamped.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:        DefaultSize,
		overlap:     DefaultOverlap,
		tocTail:     DefaultTOCTailPages,
		resplitMult: DefaultResplitMultiplier,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.overlap >= c.size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", domain.ErrInvalidChunkConfig, c.size, c.overlap)
	}

	return c, nil
}

// pageOffset records where a page's text begins in the combined buffer.
type pageOffset struct {
	offset int
	page   int
}

// Chunk splits the document with a sliding window over the combined
// page text. An entirely empty document yields zero chunks.
func (c *Chunker) Chunk(doc *domain.Document) []domain.Chunk {
	buffer, offsets := combinePages(doc.Pages)
	return c.slide(buffer, offsets, doc.TechID, doc.FileName, 0, "", nil)
}

// ChunkBySection splits the document along its table of contents,
// falling back to the sliding window when no table of contents exists.
// Sections larger than the re-split threshold are re-split with the
// sliding window, all sub-chunks tagged with the section's title.
func (c *Chunker) ChunkBySection(doc *domain.Document) []domain.Chunk {
	if len(doc.TableOfContents) == 0 {
		return c.Chunk(doc)
	}

	pageText := make(map[int]string, len(doc.Pages))
	maxPage := 0
	for _, p := range doc.Pages {
		pageText[p.Number] = p.Text
		if p.Number > maxPage {
			maxPage = p.Number
		}
	}

	var chunks []domain.Chunk
	index := 0

	toc := doc.TableOfContents
	for i, entry := range toc {
		startPage := entry.Page
		endPage := startPage + c.tocTail
		if i+1 < len(toc) {
			endPage = toc[i+1].Page
		}
		if endPage > maxPage+1 {
			endPage = maxPage + 1
		}

		var b strings.Builder
		var covered []int
		for page := startPage; page < endPage; page++ {
			text, ok := pageText[page]
			if !ok {
				continue
			}
			b.WriteString("\n")
			b.WriteString(text)
			covered = append(covered, page)
		}

		sectionText := b.String()
		if strings.TrimSpace(sectionText) == "" {
			continue
		}
		if len(covered) == 0 {
			covered = []int{1}
		}

		if len(sectionText) > c.resplitMult*c.size {
			subs := c.splitSection(sectionText, doc.TechID, doc.FileName, index, covered, entry.Title)
			chunks = append(chunks, subs...)
			index += len(subs)
			continue
		}

		content := strings.TrimSpace(sectionText)
		chunks = append(chunks, domain.Chunk{
			TechID:      doc.TechID,
			FileName:    doc.FileName,
			Index:       index,
			Content:     content,
			PageNumbers: covered,
			Section:     entry.Title,
			TokenCount:  len(sectionText) / 4,
		})
		index++
	}

	return chunks
}

// combinePages concatenates non-empty page texts into one buffer with a
// page marker at each boundary, recording where each page begins.
func combinePages(pages []domain.Page) (string, []pageOffset) {
	var b strings.Builder
	var offsets []pageOffset

	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		offsets = append(offsets, pageOffset{offset: b.Len(), page: p.Number})
		fmt.Fprintf(&b, "\n[page %d]\n%s", p.Number, p.Text)
	}

	return b.String(), offsets
}

// slide walks the buffer with the configured window and stride.
// Whitespace-only windows are dropped and do not consume an index.
// When section is non-empty every chunk is tagged with it and pages is
// used as-is; otherwise pages are derived from the recorded offsets and
// the section is detected per window.
func (c *Chunker) slide(
	buffer string,
	offsets []pageOffset,
	techID, fileName string,
	startIndex int,
	section string,
	pages []int,
) []domain.Chunk {
	var chunks []domain.Chunk
	index := startIndex
	stride := c.size - c.overlap

	for start := 0; start < len(buffer); start += stride {
		end := start + c.size
		if end > len(buffer) {
			end = len(buffer)
		}

		window := buffer[start:end]
		content := strings.TrimSpace(window)
		if content == "" {
			continue
		}

		chunkPages := pages
		chunkSection := section
		if section == "" {
			chunkPages = pagesInRange(offsets, start, end)
			chunkSection = detectSection(window)
		}

		chunks = append(chunks, domain.Chunk{
			TechID:      techID,
			FileName:    fileName,
			Index:       index,
			Content:     content,
			PageNumbers: chunkPages,
			Section:     chunkSection,
			TokenCount:  len(window) / 4,
		})
		index++
	}

	return chunks
}

// splitSection re-applies the sliding window to one oversized section,
// continuing the global chunk index.
func (c *Chunker) splitSection(
	text, techID, fileName string,
	startIndex int,
	pages []int,
	title string,
) []domain.Chunk {
	if title == "" {
		// An untitled section must still tag its sub-chunks so the
		// slide loop does not re-derive pages from missing offsets.
		title = detectSection(text)
		if title == "" {
			title = "untitled section"
		}
	}
	return c.slide(text, nil, techID, fileName, startIndex, title, pages)
}

// pagesInRange returns the pages whose recorded start offset falls
// within [start, end), defaulting to page 1 when none match.
func pagesInRange(offsets []pageOffset, start, end int) []int {
	var pages []int
	for _, po := range offsets {
		if po.offset >= start && po.offset < end {
			pages = append(pages, po.page)
		}
	}
	if len(pages) == 0 {
		return []int{1}
	}
	return pages
}

// detectSection matches the header table against the start of the
// window. No match leaves the section unset.
func detectSection(text string) string {
	head := text
	if len(head) > sectionHeadLimit {
		head = head[:sectionHeadLimit]
	}
	for _, sp := range sectionPatterns {
		if sp.re.MatchString(head) {
			return sp.label
		}
	}
	return ""
}
