package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RobBrazier/booksearch/internal/model"
)

// MockFetcher is a mock implementation of the BodyFetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

// blockingFetcher holds every fetch until release is closed.
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
	body    []byte
	calls   atomic.Int32
}

func newBlockingFetcher(body string) *blockingFetcher {
	return &blockingFetcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		body:    []byte(body),
	}
}

func (f *blockingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	f.started <- struct{}{}
	<-f.release
	return f.body, nil
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestQueryDeliversBooks(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "http://catalog/volumes?q=dune").
		Return([]byte(`{"items":[{"volumeInfo":{"title":"Dune"}}]}`), nil).Once()

	result, err := NewQuery("http://catalog/volumes?q=dune", fetcher).Start().Wait(waitCtx(t))
	require.NoError(t, err)
	require.NoError(t, result.Err())
	assert.Equal(t, []string{"Dune"}, titles(result.Books()))
	fetcher.AssertExpectations(t)
}

func TestQueryEmptyURLCompletesWithoutFetching(t *testing.T) {
	fetcher := new(MockFetcher)
	h := NewQuery("", fetcher).Start()

	result, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.NoError(t, result.Err())
	assert.NotNil(t, result.Books())
	assert.Empty(t, result.Books())
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestQueryCallbackRunsInBackground(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty url", ""},
		{"catalog url", "http://catalog/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(MockFetcher)
			fetcher.On("Fetch", mock.Anything, mock.Anything).Return([]byte(`{}`), nil).Maybe()

			release := make(chan struct{})
			var released atomic.Bool
			q := NewQuery(tt.url, fetcher)
			q.OnComplete(func(model.QueryResult) {
				select {
				case <-release:
					released.Store(true)
				case <-time.After(time.Second):
				}
			})

			h := q.Start()
			close(release)
			<-h.Done()
			assert.True(t, released.Load(), "callback ran on the goroutine that called Start")
		})
	}
}

func TestQueryFailures(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		fetchErr error
		want     error
	}{
		{"bad status", nil, badStatus(http.StatusNotFound), ErrBadStatus},
		{"network", nil, networkFailure(errors.New("connection refused")), ErrNetworkFailure},
		{"malformed", []byte(`not json`), nil, ErrMalformedJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(MockFetcher)
			fetcher.On("Fetch", mock.Anything, "http://catalog/").Return(tt.body, tt.fetchErr)

			result, err := NewQuery("http://catalog/", fetcher).Start().Wait(waitCtx(t))
			require.NoError(t, err)
			assert.ErrorIs(t, result.Err(), tt.want)
			assert.False(t, result.OK())
			assert.NotNil(t, result.Books())
			assert.Empty(t, result.Books())
		})
	}
}

func TestQueryStartRunsOnce(t *testing.T) {
	fetcher := newBlockingFetcher(`{}`)
	q := NewQuery("http://catalog/", fetcher)

	first := q.Start()
	second := q.Start()
	assert.Same(t, first, second)

	<-fetcher.started
	_, ok := first.Result()
	assert.False(t, ok, "result must not be visible before the fetch finishes")

	close(fetcher.release)
	_, err := first.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Same(t, first, q.Start())
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestQueryCallbackFiresOnce(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return([]byte(`{"items":[{"volumeInfo":{"title":"Emma"}}]}`), nil)

	var calls atomic.Int32
	delivered := make(chan model.QueryResult, 2)
	q := NewQuery("http://catalog/", fetcher)
	q.OnComplete(func(result model.QueryResult) {
		calls.Add(1)
		delivered <- result
	})
	h := q.Start()
	q.Start()

	<-h.Done()
	select {
	case result := <-delivered:
		assert.Equal(t, []string{"Emma"}, titles(result.Books()))
	case <-time.After(5 * time.Second):
		t.Fatal("callback not invoked")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryCancelDiscardsResult(t *testing.T) {
	fetcher := newBlockingFetcher(`{"items":[{"volumeInfo":{"title":"Dune"}}]}`)
	var calls atomic.Int32
	q := NewQuery("http://catalog/", fetcher)
	q.OnComplete(func(model.QueryResult) { calls.Add(1) })
	h := q.Start()

	<-fetcher.started
	h.Cancel()
	assert.True(t, h.Cancelled())

	close(fetcher.release)
	<-h.Done()

	_, ok := h.Result()
	assert.False(t, ok)
	_, err := h.Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestQueryWaitStopsObservingWhenContextEnds(t *testing.T) {
	fetcher := newBlockingFetcher(`{}`)
	h := NewQuery("http://catalog/", fetcher).Start()
	<-fetcher.started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, h.Cancelled())

	close(fetcher.release)
	<-h.Done()
	_, ok := h.Result()
	assert.False(t, ok)
}

func TestQueryWaitPrefersFinishedResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 50; i++ {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, mock.Anything).Return([]byte(`{"items":[{"volumeInfo":{"title":"Dune"}}]}`), nil)
		h := NewQuery("http://catalog/", fetcher).Start()
		<-h.Done()

		result, err := h.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Dune"}, titles(result.Books()))
		assert.False(t, h.Cancelled())
	}

	result, err := Completed(model.Failed(ErrBadStatus)).Wait(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err(), ErrBadStatus)
}

type panickingFetcher struct{}

func (panickingFetcher) Fetch(context.Context, string) ([]byte, error) {
	panic("boom")
}

func TestQueryPanicBecomesFailure(t *testing.T) {
	result, err := NewQuery("http://catalog/", panickingFetcher{}).Start().Wait(waitCtx(t))
	require.NoError(t, err)
	require.Error(t, result.Err())
	assert.Contains(t, result.Err().Error(), "boom")
	assert.Empty(t, result.Books())
}

func TestQueryEndToEnd(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		want    []string
	}{
		{"one book", http.StatusOK, `{"items":[{"volumeInfo":{"title":"Dune","authors":["Frank Herbert"],"previewLink":"http://x/dune"}}]}`, nil, []string{"Dune"}},
		{"empty items", http.StatusOK, `{"items":[]}`, nil, []string{}},
		{"no items key", http.StatusOK, `{}`, nil, []string{}},
		{"malformed body", http.StatusOK, `not json`, ErrMalformedJSON, []string{}},
		{"not found", http.StatusNotFound, `{"items":[{"volumeInfo":{"title":"Dune"}}]}`, ErrBadStatus, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			result, err := NewQuery(server.URL+"/volumes?q=dune", NewFetcher(FetchOptions{})).Start().Wait(waitCtx(t))
			require.NoError(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, result.Err(), tt.wantErr)
			} else {
				assert.NoError(t, result.Err())
			}
			assert.Equal(t, tt.want, titles(result.Books()))
		})
	}
}

func TestQueryEndToEndBookFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"volumeInfo":{"title":"Dune","authors":["Frank Herbert"],"previewLink":"http://x/dune"}}]}`))
	}))
	t.Cleanup(server.Close)

	result, err := NewQuery(server.URL, NewFetcher(FetchOptions{})).Start().Wait(waitCtx(t))
	require.NoError(t, err)
	require.Len(t, result.Books(), 1)

	book := result.Books()[0]
	assert.Equal(t, "Dune", book.Title())
	assert.Equal(t, []string{"Frank Herbert"}, book.Authors())
	link, ok := book.DescriptionURL()
	assert.True(t, ok)
	assert.Equal(t, "http://x/dune", link)
}

func TestQueryEndToEndBadStatusSkipsDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`not json`))
	}))
	t.Cleanup(server.Close)

	result, err := NewQuery(server.URL, NewFetcher(FetchOptions{})).Start().Wait(waitCtx(t))
	require.NoError(t, err)
	var fetchErr *Error
	require.ErrorAs(t, result.Err(), &fetchErr)
	assert.Equal(t, KindBadStatus, fetchErr.Kind)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
	assert.NotErrorIs(t, result.Err(), ErrMalformedJSON)
}
