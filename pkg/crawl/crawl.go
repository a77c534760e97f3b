// Package crawl discovers the link graph of a directory of HTML documents.
package crawl

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lioia/corpus-pagerank/pkg/graph"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/xerrors"
)

// Ext is the extension of the files treated as pages.
const Ext = ".html"

// Dir reads every *.html file directly inside dir. Each file is a page named
// after its base name, linking to the href targets of its anchors. Links to
// files outside the directory and self-links are dropped by graph.New.
func Dir(dir string) (*graph.Corpus, error) {
	links, err := Links(dir)
	if err != nil {
		return nil, err
	}
	c, err := graph.New(links)
	if err != nil {
		return nil, xerrors.Errorf("crawl %s: %w", dir, err)
	}
	return c, nil
}

// Links returns the raw page -> href mapping of dir, before any filtering.
func Links(dir string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerrors.Errorf("crawl %s: %w", dir, err)
	}
	links := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, xerrors.Errorf("crawl %s: %w", dir, err)
		}
		hrefs, err := Extract(f)
		_ = f.Close()
		if err != nil {
			return nil, xerrors.Errorf("crawl %s: %w", entry.Name(), err)
		}
		links[entry.Name()] = hrefs
	}
	return links, nil
}

// Extract returns the distinct href values of the <a> elements in body, in
// document order.
func Extract(body io.Reader) ([]string, error) {
	doc := html.NewTokenizer(body)
	var hrefs []string
	seen := make(map[string]struct{})
	for {
		tokenType := doc.Next()
		switch tokenType {
		case html.ErrorToken:
			if err := doc.Err(); err != io.EOF {
				return nil, err
			}
			return hrefs, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := doc.Token()
			if token.DataAtom != atom.A {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key != "href" {
					continue
				}
				if _, ok := seen[attr.Val]; ok {
					continue
				}
				seen[attr.Val] = struct{}{}
				hrefs = append(hrefs, attr.Val)
			}
		}
	}
}
