// Package page reads the parts of a built lesson page that the learning
// tools depend on: the documentation root, the sidebar lesson links, the
// interactive code blocks and the article heading.
package page

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
)

// Block is an interactive code block.
type Block struct {
	// Code is the block's trimmed starter code.
	Code string
	// Expected is the raw data-expected attribute, empty when absent.
	Expected string
}

// Page is what Parse extracts from one HTML document.
type Page struct {
	// DocRoot is the documentation_options data-url_root value, or nil when
	// the page has no documentation_options element.
	DocRoot *string

	Title        string
	SidebarLinks []string
	Consoles     []Block
	Checkers     []Block
}

// Base returns the site base path for this page when served at pageURL.
func (p *Page) Base(pageURL string) string {
	return lessonpath.ComputeBase(pageURL, p.DocRoot)
}

// ParseFile parses the HTML file at path.
func ParseFile(path string) (*Page, error) {
	f, err := os.Open(path) //nolint:gosec // user-selected page
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse walks an HTML document and collects the learning-tool hooks.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	p := &Page{}
	var articleTitle, firstTitle string

	var walk func(n *html.Node, inSidenav, inArticle bool)
	walk = func(n *html.Node, inSidenav, inArticle bool) {
		if n.Type == html.ElementNode {
			classes := strings.Fields(getAttr(n, "class"))

			switch {
			case n.Data == "a" && inSidenav &&
				slices.Contains(classes, "reference") && slices.Contains(classes, "internal"):
				if href, ok := lookupAttr(n, "href"); ok {
					p.SidebarLinks = append(p.SidebarLinks, href)
				}
			case n.Data == "h1":
				text := strings.TrimSpace(textContent(n))
				if firstTitle == "" {
					firstTitle = text
				}
				if inArticle && articleTitle == "" {
					articleTitle = text
				}
			}

			if getAttr(n, "id") == "documentation_options" && p.DocRoot == nil {
				root, _ := lookupAttr(n, "data-url_root")
				p.DocRoot = &root
			}
			if _, ok := lookupAttr(n, "data-live-console"); ok {
				p.Consoles = append(p.Consoles, block(n))
			}
			if _, ok := lookupAttr(n, "data-inline-checker"); ok {
				p.Checkers = append(p.Checkers, block(n))
			}

			inSidenav = inSidenav || slices.Contains(classes, "bd-sidenav")
			inArticle = inArticle || slices.Contains(classes, "bd-article-container")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inSidenav, inArticle)
		}
	}
	walk(doc, false, false)

	p.Title = articleTitle
	if p.Title == "" {
		p.Title = firstTitle
	}
	return p, nil
}

func block(n *html.Node) Block {
	return Block{
		Code:     strings.TrimSpace(textContent(n)),
		Expected: getAttr(n, "data-expected"),
	}
}

// textContent concatenates every descendant text node.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}
