package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/xxxsen/mslide/internal/model"
)

// ExportService renders decks (or stored snapshots) as a markdown
// outline mirroring the import format: H1 title, one H2 per slide,
// speaker notes as blockquote lines. No slide rendering.
type ExportService struct {
	decks    *DeckService
	versions *VersionService
}

func NewExportService(decks *DeckService, versions *VersionService) *ExportService {
	return &ExportService{decks: decks, versions: versions}
}

func (s *ExportService) ExportMarkdown(ctx context.Context, userID, deckID, versionID string) ([]byte, string, error) {
	var snapshot *model.DeckSnapshot
	if versionID != "" {
		version, err := s.versions.GetVersion(ctx, userID, deckID, versionID)
		if err != nil {
			return nil, "", err
		}
		snapshot = version.Snapshot
	} else {
		detail, err := s.decks.Get(ctx, userID, deckID)
		if err != nil {
			return nil, "", err
		}
		snapshot = buildSnapshot(detail.Deck, detail.Slides)
	}
	return []byte(renderMarkdown(snapshot)), sanitizeFileName(snapshot.Title) + ".md", nil
}

func renderMarkdown(snapshot *model.DeckSnapshot) string {
	var sb strings.Builder
	title := snapshot.Title
	if title == "" {
		title = "Untitled"
	}
	sb.WriteString("# " + title + "\n")
	if snapshot.Description != "" {
		sb.WriteString("\n" + snapshot.Description + "\n")
	}
	for i, slide := range snapshot.Slides {
		sb.WriteString(fmt.Sprintf("\n## Slide %d\n", i+1))
		if slide.Content != "" {
			sb.WriteString("\n" + slide.Content + "\n")
		}
		if slide.Notes != "" {
			sb.WriteString("\n")
			for _, line := range strings.Split(slide.Notes, "\n") {
				sb.WriteString("> " + line + "\n")
			}
		}
	}
	return sb.String()
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeFileChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		return "deck"
	}
	return name
}
