package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
)

const maxImportBytes = 512 * 1024

// ImportService turns a markdown outline into a deck: the first H1
// becomes the deck title, every H2 (or later H1) opens a slide, block
// content under a heading becomes the slide body, and blockquotes turn
// into speaker notes. Text before the first slide heading becomes the
// deck description.
type ImportService struct {
	decks *DeckService
}

func NewImportService(decks *DeckService) *ImportService {
	return &ImportService{decks: decks}
}

func (s *ImportService) ImportMarkdown(ctx context.Context, userID string, source []byte) (*DeckDetail, error) {
	if len(source) > maxImportBytes {
		return nil, appErr.ErrImportTooLarge
	}
	parsed := parseMarkdownDeck(source)
	if len(parsed.Slides) == 0 {
		return nil, appErr.ErrImportNoSlides
	}
	if len(parsed.Slides) > maxSlidesPerDeck {
		return nil, appErr.ErrImportTooLarge
	}
	detail, err := s.decks.Create(ctx, userID, DeckCreateInput{
		Title:       parsed.Title,
		Description: parsed.Description,
		Slides:      parsed.Slides,
	})
	if err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("markdown deck imported",
		zap.String("deck_id", detail.Deck.ID), zap.Int("slides", len(detail.Slides)))
	return detail, nil
}

type parsedDeck struct {
	Title       string
	Description string
	Slides      []SlideInput
}

func parseMarkdownDeck(source []byte) *parsedDeck {
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	deck := &parsedDeck{}
	var current *SlideInput
	var intro []string
	flush := func() {
		if current != nil {
			deck.Slides = append(deck.Slides, *current)
			current = nil
		}
	}
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			heading := strings.TrimSpace(string(n.Text(source)))
			switch {
			case n.Level == 1 && deck.Title == "":
				deck.Title = heading
			case n.Level <= 2:
				flush()
				current = &SlideInput{Content: heading}
			default:
				appendSlideText(current, &intro, heading)
			}
		case *ast.Blockquote:
			notes := blockText(n, source)
			if notes == "" {
				continue
			}
			if current == nil {
				intro = append(intro, notes)
				continue
			}
			if current.Notes != "" {
				current.Notes += "\n"
			}
			current.Notes += notes
		default:
			appendSlideText(current, &intro, blockText(node, source))
		}
	}
	flush()
	if deck.Title == "" {
		deck.Title = "Untitled"
	}
	deck.Description = strings.Join(intro, "\n\n")
	return deck
}

func appendSlideText(current *SlideInput, intro *[]string, txt string) {
	if txt == "" {
		return
	}
	if current == nil {
		*intro = append(*intro, txt)
		return
	}
	if current.Content != "" {
		current.Content += "\n\n"
	}
	current.Content += txt
}

// blockText collects the raw source lines of a block node, recursing
// into containers (lists, quotes) that carry no lines themselves.
func blockText(node ast.Node, source []byte) string {
	if node.Type() == ast.TypeBlock && node.Lines().Len() > 0 {
		var sb strings.Builder
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			sb.Write(line.Value(source))
		}
		return strings.TrimRight(sb.String(), "\n")
	}
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		part := blockText(child, source)
		if part == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(part)
	}
	return sb.String()
}
