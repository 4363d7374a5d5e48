package model

import (
	"encoding/json"
	"slices"
)

// Book is a single catalog search hit. The zero value is not a valid Book;
// use NewBook.
type Book struct {
	title          string
	authors        []string
	descriptionURL string
	hasDescription bool
}

func NewBook(title string, authors []string, descriptionURL *string) Book {
	book := Book{
		title:   title,
		authors: slices.Clone(authors),
	}
	if book.authors == nil {
		book.authors = []string{}
	}
	if descriptionURL != nil {
		book.descriptionURL = *descriptionURL
		book.hasDescription = true
	}
	return book
}

func (b Book) Title() string {
	return b.title
}

// Authors returns a copy of the author list, never nil.
func (b Book) Authors() []string {
	if len(b.authors) == 0 {
		return []string{}
	}
	return slices.Clone(b.authors)
}

func (b Book) DescriptionURL() (string, bool) {
	return b.descriptionURL, b.hasDescription
}

func (b Book) Equal(other Book) bool {
	return b.title == other.title &&
		slices.Equal(b.Authors(), other.Authors()) &&
		b.hasDescription == other.hasDescription &&
		b.descriptionURL == other.descriptionURL
}

type bookJSON struct {
	Title          string   `json:"title"`
	Authors        []string `json:"authors"`
	DescriptionURL *string  `json:"descriptionUrl,omitempty"`
}

func (b Book) MarshalJSON() ([]byte, error) {
	out := bookJSON{
		Title:   b.title,
		Authors: b.Authors(),
	}
	if b.hasDescription {
		url := b.descriptionURL
		out.DescriptionURL = &url
	}
	return json.Marshal(out)
}
