package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagereaper/pagereaper/internal/extract"
	"github.com/pagereaper/pagereaper/internal/utils/urlutil"
)

// Header is the fixed column set every artifact carries.
var Header = []string{"PageURL", "PageName", "Content", "PostDate", "Likes", "Comments"}

// Emitter writes one CSV artifact per processed work item into a single
// output directory, plus a JSON snapshot of the remaining queue so an
// operator can inspect outstanding work mid-run.
type Emitter struct {
	dir string
}

func NewEmitter(dir string) (*Emitter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Emitter{dir: dir}, nil
}

// FileName returns the deterministic artifact name for a work item: the
// final URL path segment plus ".csv".
func (e *Emitter) FileName(itemURL string) string {
	return urlutil.ArtifactBaseName(itemURL) + ".csv"
}

// Emit writes the artifact for itemURL and returns its path. Every field is
// quoted, with internal quotes doubled, so embedded commas, quotes and
// newlines survive a standard CSV parse.
func (e *Emitter) Emit(itemURL string, records []extract.Record) (string, error) {
	var b strings.Builder
	writeRow(&b, Header)
	for _, r := range records {
		writeRow(&b, []string{r.PageURL, r.PageName, r.Content, r.PostDate, r.Likes, r.Comments})
	}

	path := filepath.Join(e.dir, e.FileName(itemURL))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return path, nil
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"`)
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteString(`"`)
	}
	b.WriteString("\n")
}

// NoContentRecord is the one-row body of a generic empty result.
func NoContentRecord(itemURL string) extract.Record {
	return extract.Record{PageURL: itemURL, Content: "No Content Found"}
}

// SkippedRecord is the one-row body written when the item stalled and the
// run moved on.
func SkippedRecord(itemURL string) extract.Record {
	return extract.Record{PageURL: itemURL, Content: "Skipped - Timeout"}
}

// ErrorRecord is the one-row body written when extraction failed outright.
func ErrorRecord(itemURL string, cause error) extract.Record {
	content := "Error"
	if cause != nil {
		content = "Error: " + cause.Error()
	}
	return extract.Record{PageURL: itemURL, Content: content}
}
