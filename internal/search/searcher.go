package search

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RobBrazier/booksearch/internal/metrics"
	"github.com/RobBrazier/booksearch/internal/model"
)

type Options struct {
	BaseURL    string
	MaxResults int
	Fetch      FetchOptions
}

// Searcher turns free-text terms into started queries against one catalog
// endpoint.
type Searcher struct {
	baseURL    string
	maxResults int
	fetcher    BodyFetcher
}

func NewSearcher(opts Options) *Searcher {
	return NewSearcherWithFetcher(opts, NewFetcher(opts.Fetch))
}

func NewSearcherWithFetcher(opts Options, fetcher BodyFetcher) *Searcher {
	return &Searcher{
		baseURL:    opts.BaseURL,
		maxResults: opts.MaxResults,
		fetcher:    fetcher,
	}
}

// Search starts a new query for term. A malformed base endpoint yields a
// handle that is already complete with an InvalidURL failure.
func (s *Searcher) Search(term string) *Handle {
	url, err := BuildQueryURL(s.baseURL, term, s.maxResults)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(KindOf(err).String()).Inc()
		return Completed(model.Failed(err))
	}

	started := time.Now()
	query := NewQuery(url, s.fetcher)
	query.OnComplete(func(result model.QueryResult) {
		record(url, started, result)
	})
	return query.Start()
}

func record(url string, started time.Time, result model.QueryResult) {
	elapsed := time.Since(started)
	if err := result.Err(); err != nil {
		metrics.QueriesTotal.WithLabelValues(KindOf(err).String()).Inc()
		log.Warn().Err(err).Str("url", url).Dur("elapsed", elapsed).Msg("Catalog query failed")
		return
	}
	if url != "" {
		metrics.QueryDuration.Observe(elapsed.Seconds())
	}
	metrics.QueriesTotal.WithLabelValues("ok").Inc()
	metrics.BooksReturned.Observe(float64(len(result.Books())))
	log.Info().Str("url", url).Int("books", len(result.Books())).Dur("elapsed", elapsed).Msg("Catalog query completed")
}
