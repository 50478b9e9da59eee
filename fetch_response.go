package relay

import "time"

// fetchStatus describes the outcome of a runtime data fetch.
type fetchStatus int

const (
	// fetched indicates that a new document was downloaded.
	fetched fetchStatus = iota
	// notModified indicates that the server answered 304 to our ETag.
	notModified
	// fromCache indicates that the document was read from Config.Cache
	// after the HTTP fetch failed.
	fromCache
)

func (s fetchStatus) String() string {
	switch s {
	case fetched:
		return "fetched"
	case notModified:
		return "not modified"
	case fromCache:
		return "from cache"
	}
	return "unknown"
}

// fetchResponse represents a successful runtime data fetch.
type fetchResponse struct {
	status    fetchStatus
	data      *RuntimeData
	body      []byte
	etag      string
	fetchTime time.Time
}

// isFetched returns true if a new document was downloaded.
func (response fetchResponse) isFetched() bool {
	return response.status == fetched
}
