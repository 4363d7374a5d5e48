package feed

import (
	"embed"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/gorilla/feeds"
	"github.com/rs/zerolog/log"

	"github.com/RobBrazier/booksearch/internal/model"
)

//go:embed templates/*
var fs embed.FS

var templates = template.Must(
	template.New("base").Funcs(sprig.FuncMap()).ParseFS(fs, "templates/*.tmpl"),
)

type contentData struct {
	Title   string
	Authors []string
	Link    string
}

const catalogSearchURL = "https://www.google.com/search?tbm=bks&q=%s"

// Build renders search results for term as a feed, keeping result order.
func Build(term string, books []model.Book) feeds.Feed {
	created := time.Now()
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Book search: %s", term),
		Link:        &feeds.Link{Href: fmt.Sprintf(catalogSearchURL, url.QueryEscape(term))},
		Description: fmt.Sprintf("Generated on %s", created.Format("02 Jan 2006 15:04:05 (-0700)")),
		Created:     created,
		Updated:     created,
	}
	for i, book := range books {
		link, _ := book.DescriptionURL()
		authors := book.Authors()
		item := &feeds.Item{
			Id:      itemID(i, book),
			Title:   book.Title(),
			Content: renderContent(contentData{Title: book.Title(), Authors: authors, Link: link}),
			Created: created,
		}
		if link != "" {
			item.Link = &feeds.Link{Href: link}
		}
		if len(authors) > 0 {
			item.Author = &feeds.Author{Name: strings.Join(authors, ", ")}
		}
		feed.Add(item)
	}
	return *feed
}

func itemID(index int, book model.Book) string {
	if link, ok := book.DescriptionURL(); ok && link != "" {
		return link
	}
	return fmt.Sprintf("%d:%s", index, book.Title())
}

func renderContent(data contentData) string {
	var builder strings.Builder
	if err := templates.ExecuteTemplate(&builder, "content.tmpl", data); err != nil {
		log.Error().Err(err).Str("title", data.Title).Msg("Rendering feed content failed")
		return ""
	}
	return builder.String()
}
