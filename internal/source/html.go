package source

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/sectionize/internal/toc"
)

// openHTML parses an HTML file. h1–h6 nesting forms the outline; the
// page text is the document's visible text in reading order, heading
// text included.
func openHTML(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html %s: %w", path, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", path, err)
	}

	title := findTitle(doc)
	if title == "" {
		title = baseTitle(path)
	}

	type stackEntry struct {
		node  *toc.Node
		level int
	}
	root := &toc.Node{}
	stack := []stackEntry{{node: root, level: 0}}
	var body strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				heading := textContent(n)

				entry := &toc.Node{Title: heading}
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, entry)
				stack = append(stack, stackEntry{node: entry, level: level})

				body.WriteString(heading)
				body.WriteString("\n\n")
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote":
				if t := textContent(n); t != "" {
					body.WriteString(t)
					body.WriteString("\n\n")
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if b := findBody(doc); b != nil {
		walk(b)
	} else {
		walk(doc)
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

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
