package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error is returned for any response with status >= 400.
type Error struct {
	Method string
	Path   string
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// Message returns the text to show a user for err: the backend detail when
// there is one, otherwise the error itself.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseDetail extracts the "detail" field of an error body. A list of
// validation items is flattened to "loc.path: msg" entries joined by ", ".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []validationItem
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			loc := make([]string, len(item.Loc))
			for i, part := range item.Loc {
				loc[i] = fmt.Sprint(part)
			}
			parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(loc, "."), item.Msg))
		}
		return strings.Join(parts, ", ")
	}

	return strings.TrimSpace(string(envelope.Detail))
}
