package cleaner

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/use-agent/sift/models"
)

// ValidateURL rejects anything that is not an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return models.NewInvalidInputError("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.NewInvalidInputError(fmt.Sprintf("malformed url %q: %v", rawURL, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return models.NewInvalidInputError(fmt.Sprintf("url %q must use http or https", rawURL))
	}
	if u.Host == "" {
		return models.NewInvalidInputError(fmt.Sprintf("url %q has no host", rawURL))
	}
	return nil
}

// ValidateSelector compiles a structural selector with cascadia, the engine
// goquery uses, so that a bad selector fails before the fetch.
func ValidateSelector(css string) error {
	if _, err := cascadia.ParseGroup(css); err != nil {
		return models.NewInvalidInputError(fmt.Sprintf("invalid css selector %q: %v", css, err))
	}
	return nil
}

// ValidateFields checks a caller-supplied field list: it must be non-empty,
// every field needs a name and at least one selector, and every structural
// selector must compile.
func ValidateFields(fields []models.DetectedField) error {
	if len(fields) == 0 {
		return models.NewInvalidInputError("at least one field is required")
	}
	for i, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return models.NewInvalidInputError(fmt.Sprintf("field %d has no name", i))
		}
		if len(f.Selectors) == 0 {
			return models.NewInvalidInputError(fmt.Sprintf("field %q has no selectors", f.Name))
		}
		for _, sel := range f.Selectors {
			if sel.IsSemantic() {
				if sel.Pattern == "" {
					return models.NewInvalidInputError(fmt.Sprintf("field %q has an empty text pattern", f.Name))
				}
				continue
			}
			if sel.Full() == "" {
				return models.NewInvalidInputError(fmt.Sprintf("field %q has an empty selector", f.Name))
			}
			if err := ValidateSelector(sel.Full()); err != nil {
				return err
			}
		}
	}
	return nil
}
