// Package relay contains the runtime core shared by the relay dashboard
// and marketing pages: profile resolution, the runtime data client and the
// plan and feature predicates built on top of it.
package relay

import (
	"context"
	"net/http"
	"time"
)

// Hooks describes the events sent by Client.
type Hooks struct {
	// OnRuntimeDataChanged is called when a new runtime data document
	// has been downloaded or read from the cache. Client.Close waits for
	// running calls, so it must not be called from the hook.
	OnRuntimeDataChanged func(data *RuntimeData)

	// OnError is called when an error is logged by the client.
	OnError func(err error)
}

// Cache is a cache API used to make custom cache implementations. The
// relaycache package provides in-process and Redis backed ones.
type Cache interface {
	// Get reads an entry from the cache. A missing entry is reported
	// as an empty result, not as an error.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes an entry into the cache.
	Set(ctx context.Context, key string, value []byte) error
}

// Config describes configuration options for the Client.
type Config struct {
	// Profile holds the resolved runtime configuration. The runtime
	// data is fetched from Profile.BackendOrigin.
	Profile Profile

	// BaseURL is used instead of Profile.BackendOrigin when the
	// profile describes a same-origin deployment (empty origin).
	BaseURL string

	// Logger is used to log information about fetches and issues.
	// If it's nil, DefaultLogger() will be used.
	Logger Logger

	// LogLevel determines the logging verbosity. The zero value uses
	// the level of Logger.
	LogLevel LogLevel

	// Cache is used as a fallback when a fetch fails.
	// If it's nil, no caching will be done.
	Cache Cache

	// Transport is used as the HTTP transport for requests to the
	// backend. If it's nil, http.DefaultTransport will be used.
	Transport http.RoundTripper

	// CookieJar holds the session and CSRF cookies sent with every
	// request. If it's nil, a fresh in-memory jar is used.
	CookieJar http.CookieJar

	// HTTPTimeout holds the timeout for HTTP requests
	// made by the client. If it's zero, DefaultHTTPTimeout
	// will be used. If it's negative, no timeout will be
	// used.
	HTTPTimeout time.Duration

	// StaleAfter enables revalidation of data older than the given
	// age when it is read by a hydrated render. Zero, the default,
	// disables it: data is then only refreshed by Mutate.
	StaleAfter time.Duration

	// Hooks controls the events sent by Client.
	Hooks *Hooks
}

// Client serves the runtime data document to render passes.
type Client struct {
	logger  *leveledLogger
	cfg     Config
	fetcher *dataFetcher
}

// Result is what a render pass sees of the runtime data.
type Result struct {
	// Data is nil on server renders. On hydrated renders it holds
	// the fetched document, or DefaultRuntimeData while none is
	// available.
	Data *RuntimeData

	// Err holds the error of the latest fetch, if it failed.
	Err error

	// IsLoading is true while the first fetch is in flight.
	IsLoading bool

	// IsValidating is true while any fetch is in flight.
	IsValidating bool

	client *Client
}

// Mutate revalidates the runtime data. Call it after a local write that
// changes what the backend would return.
func (r Result) Mutate(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Mutate(ctx)
}

// ShouldRedirectToLogin reports whether the caller should treat the
// visitor as unauthenticated: a fetch failed and no fetch is in flight.
func (r Result) ShouldRedirectToLogin() bool {
	return r.Err != nil && !r.IsValidating
}

// NewClient returns a new Client that fetches runtime data from the
// backend of the given profile.
func NewClient(profile Profile) *Client {
	return NewCustomClient(Config{
		Profile: profile,
	})
}

// NewCustomClient initializes a new Client with advanced configuration.
func NewCustomClient(cfg Config) *Client {
	logger := newLeveledLogger(cfg.Logger, cfg.LogLevel, cfg.Hooks)
	return &Client{
		cfg:     cfg,
		logger:  logger,
		fetcher: newDataFetcher(cfg, logger),
	}
}

// Profile returns the profile the client was created with.
func (client *Client) Profile() Profile {
	return client.cfg.Profile
}

// RuntimeData returns the runtime data as seen by a render pass with the
// given context. It never blocks.
//
// A server render always gets nil Data and never triggers a fetch. The
// first hydrated render starts the fetch in the background; until it has
// produced a document, hydrated renders get DefaultRuntimeData.
func (client *Client) RuntimeData(rc RenderContext) Result {
	if !rc.Hydrated {
		return Result{client: client}
	}
	entry, ok := client.fetcher.current()
	if !ok {
		client.fetcher.fetchAsync(false)
		entry, _ = client.fetcher.current()
	} else if client.isStale(entry) {
		client.fetcher.fetchAsync(false)
		entry, _ = client.fetcher.current()
	}
	return client.result(entry)
}

// Load waits until runtime data is available, fetching it if no fetch has
// succeeded yet. Unlike RuntimeData it never substitutes defaults.
func (client *Client) Load(ctx context.Context) (*RuntimeData, error) {
	if entry, ok := client.fetcher.current(); ok && entry.value != nil {
		return entry.value, nil
	}
	if err := client.fetcher.fetch(ctx, false); err != nil {
		return nil, err
	}
	entry, _ := client.fetcher.current()
	return entry.value, entry.err
}

// Mutate starts a new fetch of the runtime data, even if one is in
// flight, and waits for it. Subscribers see the new document once it
// resolves. If the context is canceled while the fetch is in progress,
// Mutate returns but the underlying HTTP request will not be canceled.
func (client *Client) Mutate(ctx context.Context) error {
	client.fetcher.store.invalidate(runtimeDataPath)
	return client.fetcher.fetch(ctx, true)
}

// Subscribe registers fn to be called with the hydrated view of the
// runtime data whenever it changes, including validation state changes.
// The returned function cancels the subscription.
func (client *Client) Subscribe(fn func(Result)) (unsubscribe func()) {
	return client.fetcher.store.subscribe(runtimeDataPath, func(e storeEntry[RuntimeData]) {
		fn(client.result(e))
	})
}

// Ready is closed once the first fetch has completed, whether or not it
// succeeded.
func (client *Client) Ready() <-chan struct{} {
	return client.fetcher.doneInitialGet
}

// Close shuts down the client and waits for in-flight fetches to finish.
// Responses arriving after Close are discarded. After closing, the client
// shouldn't be used.
func (client *Client) Close() {
	client.fetcher.close()
}

func (client *Client) isStale(e storeEntry[RuntimeData]) bool {
	if client.cfg.StaleAfter <= 0 || e.validating() || e.status != statusSuccess {
		return false
	}
	return time.Since(e.fetchTime) > client.cfg.StaleAfter
}

func (client *Client) result(e storeEntry[RuntimeData]) Result {
	data := e.value
	if data == nil {
		data = DefaultRuntimeData()
	}
	return Result{
		Data:         data,
		Err:          e.err,
		IsLoading:    e.value == nil && e.validating(),
		IsValidating: e.validating(),
		client:       client,
	}
}
