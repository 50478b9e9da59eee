package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/privaterelay/go-sdk/relaycache"
)

// DefaultHTTPTimeout is the timeout used for backend requests when
// Config.HTTPTimeout is zero.
const DefaultHTTPTimeout = 15 * time.Second

// dataFetcher downloads the runtime data document and publishes it into
// a swrStore under runtimeDataPath.
type dataFetcher struct {
	origin   string
	url      string
	cacheKey string
	cache    Cache
	logger   *leveledLogger
	client   *resty.Client
	store    *swrStore[RuntimeData]
	group    singleflight.Group
	onChange func(*RuntimeData)

	ctx       context.Context
	ctxCancel func()

	// wg counts the goroutines waiting on a request and the change
	// notifications, so that close can wait for them to finish.
	wg sync.WaitGroup

	// doneInitialGet is closed when the very first
	// fetch has completed, regardless of whether
	// it succeeded.
	doneInitialGet chan struct{}
	doneGetOnce    sync.Once
}

func newDataFetcher(cfg Config, logger *leveledLogger) *dataFetcher {
	origin := strings.TrimRight(cfg.Profile.BackendOrigin, "/")
	if origin == "" {
		origin = strings.TrimRight(cfg.BaseURL, "/")
	}
	f := &dataFetcher{
		origin:         origin,
		url:            origin + apiPrefix + runtimeDataPath,
		cache:          cfg.Cache,
		logger:         logger,
		store:          newSWRStore[RuntimeData](),
		doneInitialGet: make(chan struct{}),
	}
	f.cacheKey = relaycache.ProduceCacheKey(f.url, relaycache.RuntimeDataName, relaycache.CacheVersion)
	if cfg.Hooks != nil {
		f.onChange = cfg.Hooks.OnRuntimeDataChanged
	}
	f.ctx, f.ctxCancel = context.WithCancel(context.Background())

	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	} else if timeout < 0 {
		timeout = 0
	}
	f.client = resty.New().
		SetBaseURL(origin).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "relay-go/"+version)
	if cfg.Transport != nil {
		f.client.SetTransport(cfg.Transport)
	}
	if cfg.CookieJar != nil {
		f.client.SetCookieJar(cfg.CookieJar)
	}
	f.client.OnBeforeRequest(f.setCSRFToken)
	return f
}

func (f *dataFetcher) close() {
	f.ctxCancel()
	f.wg.Wait()
}

// setCSRFToken copies the CSRF cookie into the X-CSRFToken header.
func (f *dataFetcher) setCSRFToken(c *resty.Client, r *resty.Request) error {
	jar := c.GetClient().Jar
	if jar == nil {
		return nil
	}
	u, err := url.Parse(f.url)
	if err != nil {
		return nil
	}
	for _, cookie := range jar.Cookies(u) {
		if cookie.Name == csrfCookieName && cookie.Value != "" {
			r.SetHeader("X-CSRFToken", cookie.Value)
			break
		}
	}
	return nil
}

func (f *dataFetcher) current() (storeEntry[RuntimeData], bool) {
	return f.store.get(runtimeDataPath)
}

// fetch waits for a fetch of the runtime data. If fresh is false and a
// fetch is already in flight, it joins that one; otherwise a new request
// is started. If the context is canceled while the fetch is in progress,
// fetch returns but the underlying request continues.
func (f *dataFetcher) fetch(ctx context.Context, fresh bool) error {
	done := f.join(fresh, false)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchAsync is like fetch but returns immediately. The store reports the
// fetch as validating before fetchAsync returns.
func (f *dataFetcher) fetchAsync(fresh bool) {
	f.join(fresh, true)
}

// join attaches the caller to a runtime data request and returns a channel
// that receives its outcome. The entry counts as validating from the moment
// join returns until the joined request has resolved, however long the
// caller keeps waiting.
func (f *dataFetcher) join(fresh bool, logError bool) <-chan error {
	f.store.beginValidation(runtimeDataPath)
	if fresh {
		// Responses of calls that are already in flight still land
		// in the store; the last one to resolve wins.
		f.group.Forget(runtimeDataPath)
	}
	ch := f.group.DoChan(runtimeDataPath, func() (interface{}, error) {
		return nil, f.fetcher()
	})
	done := make(chan error, 1)
	// The request goroutine belongs to singleflight; waiting here until
	// it has delivered keeps it covered by wg.
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		res := <-ch
		f.store.endValidation(runtimeDataPath)
		if logError && res.Err != nil && !errors.Is(res.Err, context.Canceled) {
			f.logger.Errorf("cannot refresh runtime data: %v", res.Err)
		}
		done <- res.Err
	}()
	return done
}

// fetcher performs one fetch and publishes its outcome. Nothing is
// published once the fetcher has been closed.
func (f *dataFetcher) fetcher() error {
	defer f.doneGetOnce.Do(func() {
		close(f.doneInitialGet)
	})
	prev, _ := f.current()
	resp, err := f.fetchData(f.ctx, prev)
	if f.ctx.Err() != nil {
		return f.ctx.Err()
	}
	if err != nil {
		err = fmt.Errorf("runtime data fetch failed: %w", err)
		f.store.resolve(runtimeDataPath, nil, "", time.Time{}, err)
		return err
	}
	f.logger.Debugf("runtime data resolved: %v", resp.status)
	f.store.resolve(runtimeDataPath, resp.data, resp.etag, resp.fetchTime, nil)
	if resp.isFetched() && f.cache != nil {
		entry := relaycache.CacheSegmentsToBytes(resp.fetchTime, resp.etag, resp.body)
		if err := f.cache.Set(f.ctx, f.cacheKey, entry); err != nil {
			f.logger.Errorf("failed to save runtime data to cache: %v", err)
		}
	}
	if resp.status != notModified && f.onChange != nil {
		// A joined caller is still waiting on this fetch, so the
		// counter cannot be zero here.
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			f.onChange(resp.data)
		}()
	}
	return nil
}

func (f *dataFetcher) fetchData(ctx context.Context, prev storeEntry[RuntimeData]) (fetchResponse, error) {
	resp, err := f.fetchHTTP(ctx, prev)
	if err == nil {
		return resp, nil
	}
	if f.cache == nil {
		return fetchResponse{}, err
	}
	f.logger.Infof("falling back to cache after runtime data fetch error: %v", err)
	cached, cacheErr := f.cache.Get(ctx, f.cacheKey)
	if cacheErr != nil {
		f.logger.Errorf("cache get failed: %v", cacheErr)
		return fetchResponse{}, err
	}
	if len(cached) == 0 {
		f.logger.Debugf("empty runtime data in cache")
		return fetchResponse{}, err
	}
	fetchTime, etag, body, cacheErr := relaycache.CacheSegmentsFromBytes(cached)
	if cacheErr != nil {
		f.logger.Errorf("cache contained invalid entry: %v", cacheErr)
		return fetchResponse{}, err
	}
	data, cacheErr := ParseRuntimeData(body)
	if cacheErr != nil {
		f.logger.Errorf("cache contained invalid runtime data: %v", cacheErr)
		return fetchResponse{}, err
	}
	if prev.value != nil && fetchTime.Before(prev.fetchTime) {
		// The cached document is older than the one we already have.
		return fetchResponse{}, err
	}
	f.logger.Debugf("returning cached runtime data fetched at %v", fetchTime)
	return fetchResponse{
		status:    fromCache,
		data:      data,
		body:      body,
		etag:      etag,
		fetchTime: fetchTime,
	}, nil
}

// fetchHTTP does the actual HTTP fetch. The previous entry is used to
// avoid downloading an unchanged document.
func (f *dataFetcher) fetchHTTP(ctx context.Context, prev storeEntry[RuntimeData]) (fetchResponse, error) {
	if f.origin == "" {
		return fetchResponse{}, fmt.Errorf("no backend origin configured")
	}
	f.logger.Infof("fetching runtime data from %v", f.url)
	req := f.client.R().SetContext(ctx)
	if prev.value != nil && prev.etag != "" {
		req.SetHeader("If-None-Match", prev.etag)
	}
	response, err := req.Get(apiPrefix + runtimeDataPath)
	if err != nil {
		return fetchResponse{}, fmt.Errorf("runtime data request failed: %w", err)
	}

	code := response.StatusCode()
	switch {
	case code == http.StatusNotModified && prev.value != nil:
		f.logger.Debugf("runtime data fetch succeeded: not modified")
		return fetchResponse{
			status:    notModified,
			data:      prev.value,
			etag:      prev.etag,
			fetchTime: time.Now(),
		}, nil
	case code >= 200 && code < 300:
		body := response.Body()
		data, err := ParseRuntimeData(body)
		if err != nil {
			return fetchResponse{}, fmt.Errorf("runtime data fetch returned invalid body: %w", err)
		}
		f.logger.Debugf("runtime data fetch succeeded: new document fetched")
		return fetchResponse{
			status:    fetched,
			data:      data,
			body:      body,
			etag:      response.Header().Get("Etag"),
			fetchTime: time.Now(),
		}, nil
	}
	return fetchResponse{}, &FetchError{
		URL:        f.url,
		StatusCode: code,
		Status:     response.Status(),
	}
}
