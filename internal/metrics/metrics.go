package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booksearch_queries_total",
		Help: "Total number of catalog queries by outcome",
	}, []string{"outcome"})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booksearch_query_duration_seconds",
		Help:    "Duration of catalog fetch and decode in seconds",
		Buckets: prometheus.DefBuckets,
	})

	BooksReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booksearch_books_returned",
		Help:    "Number of books returned per successful query",
		Buckets: []float64{0, 1, 5, 10, 20, 40},
	})
)
