package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid.
const minContentLength = 50

// Excerpt runs the Mozilla Readability algorithm on rawHTML and returns the
// article excerpt. ok is false when readability could not locate a main
// content block; callers fall back to other description sources.
func Excerpt(rawHTML string, sourceURL string) (string, bool) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", false
	}
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Debug("readability: invalid source URL", "url", sourceURL, "error", err)
		return "", false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("readability: extraction failed", "url", sourceURL, "error", err)
		return "", false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return "", false
	}

	excerpt := strings.Join(strings.Fields(article.Excerpt), " ")
	return excerpt, excerpt != ""
}
