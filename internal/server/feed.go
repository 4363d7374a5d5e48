package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/feeds"
	"github.com/rs/zerolog/log"

	"github.com/RobBrazier/booksearch/internal/feed"
	"github.com/RobBrazier/booksearch/internal/model"
	"github.com/RobBrazier/booksearch/internal/search"
)

type searchResponse struct {
	Query string       `json:"query"`
	Books []model.Book `json:"books"`
	Error string       `json:"error,omitempty"`
	Kind  string       `json:"kind,omitempty"`
}

func writeContentType(mediaType string, w http.ResponseWriter) {
	params := map[string]string{
		"charset": "utf-8",
	}
	contentType := mime.FormatMediaType(mediaType, params)
	w.Header().Set("Content-Type", contentType)
}

func urlFormat(r *http.Request) string {
	format, _ := r.Context().Value(middleware.URLFormatCtxKey).(string)
	return strings.ToLower(format)
}

func statusFor(result model.QueryResult) int {
	if result.Err() != nil {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func (s *Server) writeFeed(format feed.Format, status int, out *feeds.Feed, w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")

	var err error
	switch format {
	case feed.FORMAT_ATOM:
		writeContentType("application/atom+xml", w)
		w.WriteHeader(status)
		err = out.WriteAtom(w)
	case feed.FORMAT_JSON:
		writeContentType("application/feed+json", w)
		w.WriteHeader(status)
		err = out.WriteJSON(w)
	default:
		writeContentType("application/rss+xml", w)
		w.WriteHeader(status)
		err = out.WriteRss(w)
	}
	if err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("Writing feed failed")
	}
}

func (s *Server) writeJSON(status int, body searchResponse, w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	writeContentType("application/json", w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Writing search response failed")
	}
}

func (s *Server) SearchHandler(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	log := log.With().Str("query", term).Logger()

	result, err := s.searcher.Search(term).Wait(r.Context())
	if err != nil {
		if errors.Is(err, search.ErrCancelled) {
			log.Debug().Msg("Search cancelled")
		} else {
			log.Warn().Err(err).Msg("Client went away before search completed")
		}
		return
	}
	status := statusFor(result)

	if format, ok := feed.ParseFormat(urlFormat(r)); ok {
		out := feed.Build(term, result.Books())
		log.Info().Int("entries", len(out.Items)).Str("format", string(format)).Msg("Generated feed for search")
		s.writeFeed(format, status, &out, w)
		return
	}

	body := searchResponse{Query: term, Books: result.Books()}
	if err := result.Err(); err != nil {
		body.Error = err.Error()
		body.Kind = search.KindOf(err).String()
	}
	log.Info().Int("books", len(body.Books)).Int("status", status).Msg("Completed search")
	s.writeJSON(status, body, w)
}
