// Package readme locates and renders the README a plugin ships with, so the
// CLI can show what a plugin is without the user digging through its files.
package readme

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	herrors "github.com/avierra/hangar/internal/errors"
)

// DefaultSummaryLength caps Summary output when the caller passes 0.
const DefaultSummaryLength = 200

// Find returns the README path inside pluginDir. Matching is
// case-insensitive; "README.md" wins over other spellings and extensions.
func Find(pluginDir string) (string, error) {
	entries, err := os.ReadDir(pluginDir)
	if err != nil {
		return "", herrors.IO(err, "reading %s", pluginDir)
	}

	var fallback string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if !strings.EqualFold(stem, "readme") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".md" || ext == ".markdown" {
			return filepath.Join(pluginDir, name), nil
		}
		if fallback == "" {
			fallback = filepath.Join(pluginDir, name)
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", herrors.NotFoundf("no README in %s", pluginDir)
}

// RenderHTML converts the markdown file at path to HTML.
func RenderHTML(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, herrors.IO(err, "reading %s", path)
	}

	var buf bytes.Buffer
	if err := goldmark.New().Convert(source, &buf); err != nil {
		return nil, herrors.Wrap(err, herrors.CategoryIO, "rendering "+path)
	}
	return buf.Bytes(), nil
}

// Summary renders the README and returns the plain text of its first
// paragraph, truncated to maxChars runes.
func Summary(path string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = DefaultSummaryLength
	}

	rendered, err := RenderHTML(path)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return "", herrors.Wrap(err, herrors.CategoryIO, "parsing rendered "+path)
	}

	var para *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if para != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "p" {
			para = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)

	if para == nil {
		return "", nil
	}

	text := extractText(para)
	runes := []rune(text)
	if len(runes) > maxChars {
		text = string(runes[:maxChars]) + "..."
	}
	return text, nil
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}

	return strings.TrimSpace(text.String())
}
