package mcp

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// toMarkdown converts a rendered HTML fragment into markdown for tool
// responses.
func toMarkdown(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	markdownBytes, err := htmltomarkdown.ConvertNode(doc)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(string(markdownBytes)), nil
}
