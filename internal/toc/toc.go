// Package toc models a document's navigational outline and the ordered
// worklist of section titles consumed during segmentation.
package toc

import "github.com/dgallion1/sectionize/internal/textmatch"

// Node is one entry in the outline tree.
type Node struct {
	Title    string  // Entry label as stored in the document
	Children []*Node // Sub-entries in outline order
}

// Flatten returns the normalized titles of root's direct children, in
// outline order. Only the first level is consumed during segmentation;
// deeper entries describe subsections inside a section's text and would
// produce boundaries the caller never asked for. Empty titles are dropped.
func Flatten(root *Node) []string {
	if root == nil {
		return nil
	}
	titles := make([]string, 0, len(root.Children))
	for _, child := range root.Children {
		title := textmatch.Normalize(child.Title)
		if title == "" || title == " " {
			continue
		}
		titles = append(titles, title)
	}
	return titles
}

// SkipToAnchor drops titles up to and including the first one equal to
// anchor. It reports whether the anchor was found; when it is absent the
// input is returned unchanged and the caller should treat the outline as
// unusable.
func SkipToAnchor(titles []string, anchor string) ([]string, bool) {
	anchor = textmatch.Normalize(anchor)
	for i, t := range titles {
		if t == anchor {
			return titles[i+1:], true
		}
	}
	return titles, false
}

// Worklist is the ordered, mutable collection of not-yet-matched titles
// for one document. Forward traversal consumes the front, backward
// traversal the back.
type Worklist struct {
	items []string
}

// NewWorklist builds a worklist over titles in outline order.
func NewWorklist(titles []string) *Worklist {
	items := make([]string, len(titles))
	copy(items, titles)
	return &Worklist{items: items}
}

func (w *Worklist) Len() int { return len(w.items) }

func (w *Worklist) Empty() bool { return len(w.items) == 0 }

// Front returns the first remaining title without removing it.
func (w *Worklist) Front() string {
	if len(w.items) == 0 {
		return ""
	}
	return w.items[0]
}

// Back returns the last remaining title without removing it.
func (w *Worklist) Back() string {
	if len(w.items) == 0 {
		return ""
	}
	return w.items[len(w.items)-1]
}

// PopFront removes and returns the first remaining title.
func (w *Worklist) PopFront() string {
	if len(w.items) == 0 {
		return ""
	}
	t := w.items[0]
	w.items = w.items[1:]
	return t
}

// PopBack removes and returns the last remaining title.
func (w *Worklist) PopBack() string {
	if len(w.items) == 0 {
		return ""
	}
	t := w.items[len(w.items)-1]
	w.items = w.items[:len(w.items)-1]
	return t
}

// Remaining returns a copy of the titles still in the worklist, front to
// back. Used for diagnostics after segmentation ends.
func (w *Worklist) Remaining() []string {
	out := make([]string, len(w.items))
	copy(out, w.items)
	return out
}
