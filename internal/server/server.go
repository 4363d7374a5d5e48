package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RobBrazier/booksearch/config"
	"github.com/RobBrazier/booksearch/internal/search"
	"github.com/RobBrazier/booksearch/internal/version"
)

// Searcher starts a catalog query for a free-text term.
type Searcher interface {
	Search(term string) *search.Handle
}

type Server struct {
	port     int
	searcher Searcher
}

func NewSearcherFromConfig() *search.Searcher {
	return search.NewSearcher(search.Options{
		BaseURL:    config.BooksAPIURL(),
		MaxResults: config.MaxResults(),
		Fetch: search.FetchOptions{
			ConnectTimeout: config.ConnectTimeout(),
			ReadTimeout:    config.ReadTimeout(),
			RetryMax:       config.RetryMax(),
			UserAgent:      version.UserAgent(),
		},
	})
}

func NewServer() *http.Server {
	NewServer := &Server{
		port:     config.Port(),
		searcher: NewSearcherFromConfig(),
	}
	log.Info().
		Int("port", NewServer.port).
		Str("catalog", config.BooksAPIURL()).
		Str("version", version.Version).
		Msg("Configured book search server")

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Minute,
	}

	return server
}
