package source

import (
	"fmt"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/sectionize/internal/toc"
)

// pdfDocument reads pages lazily through the PDF library; the underlying
// file stays open until Close.
type pdfDocument struct {
	f       *os.File
	r       *pdflib.Reader
	title   string
	outline *toc.Node
}

func openPDF(path string) (Document, error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}

	title := strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text())
	if title == "" {
		title = baseTitle(path)
	}

	return &pdfDocument{
		f:       f,
		r:       r,
		title:   clean(title),
		outline: convertOutline(r.Outline()),
	}, nil
}

func (d *pdfDocument) Title() string      { return d.title }
func (d *pdfDocument) Outline() *toc.Node { return d.outline }
func (d *pdfDocument) NumPages() int      { return d.r.NumPage() }
func (d *pdfDocument) Close() error       { return d.f.Close() }

func (d *pdfDocument) PageText(i int) (text string, err error) {
	// The reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract page %d: %v", i+1, r)
		}
	}()

	page := d.r.Page(i + 1) // the library counts pages from 1
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", i+1, err)
	}
	return clean(text), nil
}

// convertOutline maps the library's outline tree onto ours. The library
// root carries no title of its own; a root without children means the
// document has no outline at all.
func convertOutline(o pdflib.Outline) *toc.Node {
	if len(o.Child) == 0 {
		return nil
	}
	return convertOutlineNode(o)
}

func convertOutlineNode(o pdflib.Outline) *toc.Node {
	node := &toc.Node{Title: clean(o.Title)}
	for _, child := range o.Child {
		node.Children = append(node.Children, convertOutlineNode(child))
	}
	return node
}
