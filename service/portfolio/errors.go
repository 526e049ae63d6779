package portfolio

import "fmt"

// ErrRateLimited is returned on indexer 429s. Never retried; the caller
// serves the stale snapshot if one exists.
type ErrRateLimited struct{}

func (e ErrRateLimited) Error() string {
	return "indexer rate limit exceeded"
}

// ErrUnauthorized is returned on indexer 401s, usually a bad API key.
type ErrUnauthorized struct{}

func (e ErrUnauthorized) Error() string {
	return "indexer rejected the api key"
}

// ErrTransport wraps network-level failures reaching the indexer.
type ErrTransport struct {
	Err error
}

func (e ErrTransport) Error() string {
	return fmt.Sprintf("indexer unreachable: %s", e.Err)
}

func (e ErrTransport) Unwrap() error {
	return e.Err
}

// ErrUpstream covers every other non-2xx indexer response.
type ErrUpstream struct {
	Status int
	Body   string
}

func (e ErrUpstream) Error() string {
	return fmt.Sprintf("indexer returned status %d: %s", e.Status, e.Body)
}
