package model

// QueryResult is the single outcome of a search query: either a (possibly
// empty) list of books or a failure, never both.
type QueryResult struct {
	books []Book
	err   error
}

func Succeeded(books []Book) QueryResult {
	if books == nil {
		books = []Book{}
	}
	return QueryResult{books: books}
}

func Failed(err error) QueryResult {
	return QueryResult{books: []Book{}, err: err}
}

// Books is empty, not nil, for failed results and for searches with no matches.
func (r QueryResult) Books() []Book {
	if r.books == nil {
		return []Book{}
	}
	return r.books
}

func (r QueryResult) Err() error {
	return r.err
}

func (r QueryResult) OK() bool {
	return r.err == nil
}
