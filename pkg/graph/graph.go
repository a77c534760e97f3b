package graph

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/xerrors"
)

// ErrMalformedLine is returned for edge-list lines that are neither a page
// declaration nor a single link.
var ErrMalformedLine = xerrors.New("malformed edge-list line")

// Write stores c as an edge list readable by LoadResource.
func Write(output string, c *Corpus) error {
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	if err = WriteTo(w, c); err != nil {
		return err
	}
	return w.Flush()
}

// WriteTo encodes c as an edge list: one "from to" line per link and a lone
// page name for every dangling page.
func WriteTo(w io.Writer, c *Corpus) error {
	for _, page := range c.Pages() {
		links := c.Links(page)
		if len(links) == 0 {
			if _, err := fmt.Fprintln(w, page); err != nil {
				return err
			}
			continue
		}
		for _, to := range links {
			if _, err := fmt.Fprintf(w, "%s %s\n", page, to); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadResource loads an edge-list graph from a local path or an http(s) URL.
func LoadResource(resource string) (*Corpus, error) {
	var bytes []byte
	var err error
	// Check if it's a network resource or a local one
	if strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://") {
		var resp *http.Response
		resp, err = http.Get(resource)
		if err != nil {
			return nil, xerrors.Errorf("could not load network file at %s: %w", resource, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, xerrors.Errorf("could not load network file at %s: status %d", resource, resp.StatusCode)
		}
		bytes, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, xerrors.Errorf("could not read body from %s: %w", resource, err)
		}
	} else {
		bytes, err = os.ReadFile(resource)
		if err != nil {
			return nil, xerrors.Errorf("could not read graph at %s: %w", resource, err)
		}
	}
	c, err := LoadBytes(bytes)
	if err != nil {
		return nil, xerrors.Errorf("could not load graph from %s: %w", resource, err)
	}
	return c, nil
}

// LoadBytes parses an edge list. Each line is either "from to" (space, tab or
// comma separated) or a single page name; blank lines and lines starting with
// "#" or "//" are skipped. Every name seen on either side becomes a page.
func LoadBytes(contents []byte) (*Corpus, error) {
	links := make(map[string][]string)
	lines := strings.Split(strings.ReplaceAll(string(contents), "\r\n", "\n"), "\n")
	for i, line := range lines {
		from, to, skip, err := convertLine(line)
		if err != nil {
			return nil, xerrors.Errorf("line %d: %w", i+1, err)
		}
		if skip {
			continue
		}
		if _, ok := links[from]; !ok {
			links[from] = nil
		}
		if to == "" {
			continue
		}
		if _, ok := links[to]; !ok {
			links[to] = nil
		}
		links[from] = append(links[from], to)
	}
	return New(links)
}

func convertLine(line string) (string, string, bool, error) {
	line = strings.TrimSpace(line)
	// Skip comment lines
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") || line == "" {
		return "", "", true, nil
	}
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	switch len(tokens) {
	case 1:
		return tokens[0], "", false, nil
	case 2:
		return tokens[0], tokens[1], false, nil
	}
	return "", "", false, xerrors.Errorf("%q: %w", line, ErrMalformedLine)
}
