package source

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/sectionize/internal/toc"
)

// openMarkdown parses a Markdown file with goldmark. Headings form the
// outline; the page text is the plain-text rendering of the whole file,
// headings included, so every outline title occurs verbatim in the text.
func openMarkdown(path string) (Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown %s: %w", path, err)
	}

	md := goldmark.New()
	docNode := md.Parser().Parse(text.NewReader(src))

	type stackEntry struct {
		node  *toc.Node
		level int
	}
	root := &toc.Node{}
	stack := []stackEntry{{node: root, level: 0}}

	title := ""
	var body strings.Builder

	for n := docNode.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			heading := string(node.Text(src))
			if title == "" && node.Level == 1 {
				title = heading
			}

			entry := &toc.Node{Title: heading}
			for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, entry)
			stack = append(stack, stackEntry{node: entry, level: node.Level})

			body.WriteString(heading)
			body.WriteString("\n\n")

		default:
			if t := blockText(n, src); t != "" {
				body.WriteString(t)
				body.WriteString("\n\n")
			}
		}
	}

	if title == "" {
		title = baseTitle(path)
	}

	var outline *toc.Node
	if len(root.Children) > 0 {
		outline = root
	}

	return &memDocument{
		title:   clean(title),
		outline: outline,
		text:    clean(body.String()),
	}, nil
}

// blockText gets the text content of a goldmark AST node. A block with
// source lines contributes those lines; container blocks recurse.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			if part := blockText(c, src); part != "" {
				buf.WriteString(part)
				buf.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
