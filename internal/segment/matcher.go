// Package segment finds section boundaries by aligning an ordered worklist
// of outline titles against extracted page text with fuzzy matching.
package segment

import (
	"math"
	"strings"

	"github.com/dgallion1/sectionize/internal/textmatch"
	"github.com/dgallion1/sectionize/internal/toc"
)

// Mode selects how candidate offsets are compared against a title.
type Mode int

const (
	// ModeFuzzy accepts the closest substring within an edit-distance
	// tolerance proportional to the title length.
	ModeFuzzy Mode = iota
	// ModeExact accepts only verbatim occurrences.
	ModeExact
)

// Direction is the page traversal and scan direction.
type Direction int

const (
	// Forward feeds pages first to last and consumes the worklist front.
	Forward Direction = iota
	// Backward feeds pages last to first and consumes the worklist back.
	Backward
)

// DefaultToleranceRatio is the fraction of a title's length allowed as
// edit operations for a fuzzy match.
const DefaultToleranceRatio = 0.1

// Options configure a Matcher.
type Options struct {
	Mode           Mode
	Direction      Direction
	ToleranceRatio float64 // 0 means DefaultToleranceRatio

	// SkipTOCLine blanks one verbatim occurrence of the first pending
	// title on the first page, so a table-of-contents page's own listing
	// cannot trigger the first boundary. Only meaningful for documents
	// that open with their table of contents.
	SkipTOCLine bool
}

// Section is one finished span of text owned by a matched title.
type Section struct {
	Title string
	Text  string
}

// Stats describes what segmentation did with a document, for diagnostics.
type Stats struct {
	Matched        int      // titles that produced a boundary
	Unmatched      []string // worklist entries left over at the end
	DiscardedBytes int      // text not owned by any matched title
}

type openSection struct {
	title  string
	titled bool
	buf    strings.Builder
}

// Matcher consumes normalized page text in traversal order and produces
// section boundaries. Pages must be fed in the direction the Matcher was
// built for: first page first for Forward, last page first for Backward.
type Matcher struct {
	opts Options
	work *toc.Worklist

	// Forward state: per-page consumption, open buffer per boundary.
	sections []*openSection

	// Backward state: content accumulates until a boundary is found.
	unconsumed string
	done       []Section

	firstPage bool
}

// NewMatcher builds a Matcher over titles in outline order.
func NewMatcher(titles []string, opts Options) *Matcher {
	if opts.ToleranceRatio <= 0 {
		opts.ToleranceRatio = DefaultToleranceRatio
	}
	m := &Matcher{
		opts:      opts,
		work:      toc.NewWorklist(titles),
		firstPage: true,
	}
	if opts.Direction == Forward {
		// The buffer before the first boundary has no owning title.
		m.sections = []*openSection{{}}
	}
	return m
}

// Feed processes one page of raw extracted text.
func (m *Matcher) Feed(page string) {
	content := textmatch.Normalize(page)
	if m.opts.Direction == Backward {
		m.feedBackward(content)
		return
	}
	m.feedForward(content)
}

func (m *Matcher) feedForward(content string) {
	if m.firstPage {
		m.firstPage = false
		if m.opts.SkipTOCLine && !m.work.Empty() {
			if i := strings.Index(content, m.work.Front()); i >= 0 {
				content = content[:i] + " " + content[i+len(m.work.Front()):]
			}
		}
	}

	for {
		if m.work.Empty() {
			m.current().buf.WriteString(content)
			return
		}

		title := m.work.Front()
		off, ok := m.findBoundary(content, title, Forward)
		if !ok {
			// No boundary on this pass; the whole remainder belongs to
			// the section in progress.
			m.current().buf.WriteString(content)
			return
		}

		m.current().buf.WriteString(content[:off])
		content = content[off+len(title):]
		m.work.PopFront()
		m.sections = append(m.sections, &openSection{title: title, titled: true})
	}
}

func (m *Matcher) feedBackward(content string) {
	// Pages arrive last-first, so each new page extends the unconsumed
	// content on the near (earlier) side.
	m.unconsumed = content + m.unconsumed

	for !m.work.Empty() {
		title := m.work.Back()
		off, ok := m.findBoundary(m.unconsumed, title, Backward)
		if !ok {
			return
		}

		// Everything past the boundary was emitted or belongs to this
		// title; the section is complete the moment its title is found.
		m.done = append(m.done, Section{
			Title: title,
			Text:  m.unconsumed[off+len(title):],
		})
		m.unconsumed = m.unconsumed[:off]
		m.work.PopBack()
	}
}

// Finish closes the matcher and returns the finished sections in the
// order their boundaries were found, plus diagnostics. Buffers with no
// owning title are discarded, never emitted.
func (m *Matcher) Finish() ([]Section, Stats) {
	stats := Stats{Unmatched: m.work.Remaining()}

	var out []Section
	if m.opts.Direction == Backward {
		out = m.done
		stats.DiscardedBytes = len(m.unconsumed)
	} else {
		for _, s := range m.sections {
			if !s.titled {
				stats.DiscardedBytes += s.buf.Len()
				continue
			}
			out = append(out, Section{Title: s.title, Text: s.buf.String()})
		}
	}

	stats.Matched = len(out)
	return out, stats
}

func (m *Matcher) current() *openSection {
	return m.sections[len(m.sections)-1]
}

// Tolerance returns the maximum acceptable edit distance for a title.
func Tolerance(title string, ratio float64) int {
	if ratio <= 0 {
		ratio = DefaultToleranceRatio
	}
	return int(math.Round(float64(len(title)) * ratio))
}

// findBoundary scans candidate offsets for a substring of the title's
// length, tracking the minimum distance seen and the offset at which it
// last improved. It reports the boundary offset, already adjusted off any
// UTF-8 continuation byte, and whether the best candidate was acceptable.
func (m *Matcher) findBoundary(content, title string, dir Direction) (int, bool) {
	n := len(title)
	if n == 0 || n > len(content) {
		return 0, false
	}

	if m.opts.Mode == ModeExact {
		var i int
		if dir == Backward {
			i = strings.LastIndex(content, title)
		} else {
			i = strings.Index(content, title)
		}
		if i < 0 {
			return 0, false
		}
		return i, true
	}

	tol := Tolerance(title, m.opts.ToleranceRatio)
	best := tol + 1
	bestOff := -1

	if dir == Backward {
		for i := len(content) - n; i >= 0; i-- {
			d := textmatch.DistanceAtMost(content[i:i+n], title, best-1)
			if d < best {
				best, bestOff = d, i
				if best == 0 {
					break
				}
			}
		}
	} else {
		for i := 0; i+n <= len(content); i++ {
			d := textmatch.DistanceAtMost(content[i:i+n], title, best-1)
			if d < best {
				best, bestOff = d, i
				if best == 0 {
					break
				}
			}
		}
	}

	if best > tol {
		return 0, false
	}

	// Never split inside a multi-byte code point.
	for bestOff > 0 && content[bestOff]&0xC0 == 0x80 {
		bestOff--
	}
	return bestOff, true
}
