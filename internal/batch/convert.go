package batch

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/sectionize/internal/config"
	"github.com/dgallion1/sectionize/internal/record"
	"github.com/dgallion1/sectionize/internal/segment"
	"github.com/dgallion1/sectionize/internal/source"
	"github.com/dgallion1/sectionize/internal/textmatch"
	"github.com/dgallion1/sectionize/internal/toc"
)

// ConvertFile opens the document at path, segments it along its outline
// and returns the resulting records. A document without a usable outline
// follows cfg.NoOutlinePolicy. The returned slice is empty (not an
// error) for skipped documents.
func ConvertFile(path string, cfg config.Config, log *slog.Logger) ([]record.Record, error) {
	doc, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return ConvertDocument(doc, filepath.Base(path), cfg, log)
}

// ConvertDocument segments one open document into output records.
func ConvertDocument(doc source.Document, topic string, cfg config.Config, log *slog.Logger) ([]record.Record, error) {
	titles := outlineTitles(doc, cfg)

	if len(titles) == 0 {
		if cfg.NoOutlinePolicy == config.PolicyEmit {
			log.Info("no outline, emitting whole document", "topic", topic)
			return []record.Record{{
				Title:     doc.Title(),
				Topic:     topic,
				Language:  cfg.Language,
				Text:      wholeText(doc, log),
				Paragraph: doc.Title(),
			}}, nil
		}
		log.Info("no outline, skipping document", "topic", topic, "title", doc.Title())
		return nil, nil
	}

	m := segment.NewMatcher(titles, segmentOptions(cfg))

	n := doc.NumPages()
	for p := 0; p < n; p++ {
		i := p
		if cfg.ScanDirection == config.DirectionBackward {
			i = n - 1 - p
		}
		text, err := doc.PageText(i)
		if err != nil {
			// A bad page costs its text, not the document.
			log.Warn("page extraction failed", "topic", topic, "page", i, "error", err)
			continue
		}
		m.Feed(text)
	}

	sections, stats := m.Finish()
	if len(stats.Unmatched) > 0 {
		log.Warn("titles left unmatched",
			"topic", topic,
			"unmatched", len(stats.Unmatched),
			"sample", sample(stats.Unmatched, 3),
		)
	}

	recs := make([]record.Record, 0, len(sections))
	for _, s := range sections {
		recs = append(recs, record.Record{
			Title:     doc.Title(),
			Topic:     topic,
			Language:  cfg.Language,
			Text:      s.Text,
			Paragraph: s.Title,
		})
	}
	return recs, nil
}

// outlineTitles flattens the document outline into the worklist titles.
// When the whole outline hangs off a single top-level entry (typical for
// Markdown and DOCX files with one document heading), segmentation
// consumes that entry's children instead.
func outlineTitles(doc source.Document, cfg config.Config) []string {
	root := doc.Outline()
	if root == nil {
		return nil
	}
	if len(root.Children) == 1 && len(root.Children[0].Children) > 0 {
		root = root.Children[0]
	}

	titles := toc.Flatten(root)
	if cfg.TOCAnchor != "" {
		rest, found := toc.SkipToAnchor(titles, cfg.TOCAnchor)
		if !found {
			return nil
		}
		titles = rest
	}
	return titles
}

func segmentOptions(cfg config.Config) segment.Options {
	opts := segment.Options{
		ToleranceRatio: cfg.ToleranceRatio,
		// An anchored outline means the document opens with its table of
		// contents, whose listing of the first title must not match.
		SkipTOCLine: cfg.TOCAnchor != "",
	}
	if cfg.MatchMode == config.ModeExact {
		opts.Mode = segment.ModeExact
	}
	if cfg.ScanDirection == config.DirectionBackward {
		opts.Direction = segment.Backward
	}
	return opts
}

func wholeText(doc source.Document, log *slog.Logger) string {
	var b strings.Builder
	for i := 0; i < doc.NumPages(); i++ {
		text, err := doc.PageText(i)
		if err != nil {
			log.Warn("page extraction failed", "page", i, "error", err)
			continue
		}
		b.WriteString(textmatch.Normalize(text))
	}
	return b.String()
}

func sample(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
