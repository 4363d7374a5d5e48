package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/RobBrazier/booksearch/internal/model"
)

// The catalog schema is loose, so every level is decoded into raw messages
// keyed by the exact field name and each field is interpreted on its own.
type rawObject map[string]json.RawMessage

// itemSkip describes a response item that could not become a Book.
type itemSkip struct {
	Index  int
	Reason string
}

// Decode turns a catalog response body into books in source order. Items
// without volume info or a title are dropped; only an unreadable document is
// an error.
func Decode(data []byte) ([]model.Book, error) {
	books, skipped, err := decode(data)
	if err != nil {
		return nil, err
	}
	for _, skip := range skipped {
		log.Debug().Int("index", skip.Index).Str("reason", skip.Reason).Msg("Skipping catalog item")
	}
	return books, nil
}

func decode(data []byte) ([]model.Book, []itemSkip, error) {
	if !json.Valid(data) {
		return nil, nil, malformedJSON(syntaxError(data))
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil, malformedJSON(errors.New("top-level value is not an object"))
	}

	var response rawObject
	if err := json.Unmarshal(trimmed, &response); err != nil {
		return nil, nil, malformedJSON(err)
	}

	books := []model.Book{}
	if isAbsent(response["items"]) {
		return books, nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(response["items"], &items); err != nil {
		return nil, nil, malformedJSON(fmt.Errorf("items is not an array: %w", err))
	}

	var skipped []itemSkip
	for i, raw := range items {
		book, reason := decodeItem(raw)
		if reason != "" {
			skipped = append(skipped, itemSkip{Index: i, Reason: reason})
			continue
		}
		books = append(books, book)
	}
	return books, skipped, nil
}

func decodeItem(raw json.RawMessage) (model.Book, string) {
	var item rawObject
	if err := json.Unmarshal(raw, &item); err != nil {
		return model.Book{}, "item is not an object"
	}
	if isAbsent(item["volumeInfo"]) {
		return model.Book{}, "missing volumeInfo"
	}
	var info rawObject
	if err := json.Unmarshal(item["volumeInfo"], &info); err != nil {
		return model.Book{}, "volumeInfo is not an object"
	}

	title, ok := stringValue(info["title"])
	if !ok {
		return model.Book{}, "missing title"
	}

	var authors []string
	var entries []json.RawMessage
	if !isAbsent(info["authors"]) && json.Unmarshal(info["authors"], &entries) == nil {
		for _, entry := range entries {
			if author, ok := stringValue(entry); ok {
				authors = append(authors, author)
			}
		}
	}

	var preview *string
	if link, ok := stringValue(info["previewLink"]); ok {
		preview = &link
	}
	return model.NewBook(title, authors, preview), ""
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func stringValue(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func syntaxError(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return errors.New("invalid json")
}
