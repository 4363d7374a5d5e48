package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/RobBrazier/booksearch/internal/model"
)

// ErrCancelled is returned by Handle.Wait once the caller has stopped observing.
var ErrCancelled = errors.New("query cancelled")

// BodyFetcher is the transport a Query runs on. *Fetcher implements it.
type BodyFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var _ BodyFetcher = (*Fetcher)(nil)

// Query runs fetch then decode for one URL on a background goroutine. A Query
// is bound to its URL for life; searching for something else needs a new one.
type Query struct {
	url     string
	fetcher BodyFetcher

	mu         sync.Mutex
	handle     *Handle
	onComplete func(model.QueryResult)
}

func NewQuery(url string, fetcher BodyFetcher) *Query {
	return &Query{url: url, fetcher: fetcher}
}

// OnComplete registers fn to be called once with the result, on the
// background goroutine, unless the handle is cancelled first. It must be
// called before Start.
func (q *Query) OnComplete(fn func(model.QueryResult)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onComplete = fn
}

// Start launches the query. Only the first call does any work; later calls
// return the same Handle.
func (q *Query) Start() *Handle {
	q.mu.Lock()
	if q.handle != nil {
		h := q.handle
		q.mu.Unlock()
		return h
	}
	h := newHandle(q.onComplete)
	q.handle = h
	q.mu.Unlock()

	go func() {
		h.complete(q.run())
	}()
	return h
}

func (q *Query) run() (result model.QueryResult) {
	if q.url == "" {
		return model.Succeeded(nil)
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("url", q.url).Msg("Query panicked")
			result = model.Failed(fmt.Errorf("query panicked: %v", r))
		}
	}()

	// transport timeouts bound the request; nothing cancels it early
	body, err := q.fetcher.Fetch(context.Background(), q.url)
	if err != nil {
		return model.Failed(err)
	}
	books, err := Decode(body)
	if err != nil {
		return model.Failed(err)
	}
	return model.Succeeded(books)
}

// Handle observes a started Query. The result is produced exactly once.
type Handle struct {
	done chan struct{}

	mu         sync.Mutex
	result     model.QueryResult
	finished   bool
	cancelled  bool
	onComplete func(model.QueryResult)
}

// Completed returns a handle that already holds result.
func Completed(result model.QueryResult) *Handle {
	h := newHandle(nil)
	h.complete(result)
	return h
}

func newHandle(onComplete func(model.QueryResult)) *Handle {
	return &Handle{
		done:       make(chan struct{}),
		onComplete: onComplete,
	}
}

func (h *Handle) complete(result model.QueryResult) {
	h.mu.Lock()
	if h.finished {
		h.mu.Unlock()
		return
	}
	h.finished = true
	cancelled := h.cancelled
	if !cancelled {
		h.result = result
	}
	callback := h.onComplete
	h.onComplete = nil
	h.mu.Unlock()
	defer close(h.done)

	if cancelled {
		log.Debug().Msg("Discarding result of cancelled query")
		return
	}
	if callback != nil {
		callback(result)
	}
}

// Done is closed when the background work has finished, whether or not the
// result was delivered. Any completion callback has returned by then.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Cancel stops delivery to this caller. An in-flight fetch runs to completion
// and its result is dropped.
func (h *Handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
	h.result = model.QueryResult{}
	h.onComplete = nil
}

func (h *Handle) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// Result polls for the outcome. ok is false while the query is running or
// after it was cancelled.
func (h *Handle) Result() (model.QueryResult, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.finished || h.cancelled {
		return model.QueryResult{}, false
	}
	return h.result, true
}

// Wait blocks until the result is ready. If ctx ends first the handle is
// cancelled and ctx's error is returned.
func (h *Handle) Wait(ctx context.Context) (model.QueryResult, error) {
	select {
	case <-h.done:
		return h.delivered()
	default:
	}
	select {
	case <-h.done:
	case <-ctx.Done():
		h.Cancel()
		return model.QueryResult{}, ctx.Err()
	}
	return h.delivered()
}

func (h *Handle) delivered() (model.QueryResult, error) {
	result, ok := h.Result()
	if !ok {
		return model.QueryResult{}, ErrCancelled
	}
	return result, nil
}
