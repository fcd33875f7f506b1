package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/nealrs/baby-tracker/internal/domain"
)

const fence = "```"

// ParseError reports a model response that is not a JSON array of objects once the
// markdown fences are removed.
type ParseError struct {
	Payload string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse extraction payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Sanitize strips one leading and one trailing fence marker from raw and decodes the
// remainder into activity items. It returns either every item or a *ParseError, never a
// partial result.
func Sanitize(raw string) ([]domain.Item, error) {
	payload := stripFences(raw)

	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ParseError{Payload: payload, Err: errors.New("expected a JSON array")}
	}

	var items []domain.Item
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &ParseError{Payload: payload, Err: err}
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, fence) {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			// Single line payload: drop the marker and its language tag.
			s = strings.TrimLeftFunc(s[len(fence):], unicode.IsLetter)
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, fence) {
		s = s[:len(s)-len(fence)]
	}
	return strings.TrimSpace(s)
}
