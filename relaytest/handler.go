// Package relaytest provides an HTTP handler that
// can be used to test relay scenarios in tests.
package relaytest

import (
	"crypto/md5"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	relay "github.com/privaterelay/go-sdk"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler is an http.Handler that serves the relay backend endpoints used
// by the relay client: the runtime data document and alias creation.
// The zero value is OK to use; it serves 404 for runtime data until
// SetRuntimeData is called.
type Handler struct {
	once   sync.Once
	router chi.Router

	mu          sync.Mutex
	runtimeData []byte
	status      int
	apiToken    string
	quota       int
	aliases     []relay.Alias
	requests    []http.Header
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.once.Do(h.initRouter)
	h.router.ServeHTTP(w, req)
}

func (h *Handler) initRouter() {
	r := chi.NewRouter()
	r.Get("/api/v1/runtime_data", h.serveRuntimeData)
	r.Post("/emails/", h.createAlias)
	h.router = r
}

// SetRuntimeData sets the document served by the runtime data endpoint.
// It can be called concurrently with other Handler methods.
func (h *Handler) SetRuntimeData(rd *relay.RuntimeData) error {
	data, err := json.Marshal(rd)
	if err != nil {
		return fmt.Errorf("cannot marshal runtime data: %v", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runtimeData = data
	h.status = 0
	return nil
}

// SetStatus makes the runtime data endpoint fail with the given status
// code. Zero restores normal operation.
func (h *Handler) SetStatus(code int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = code
}

// SetAliasQuota configures alias creation: only requests carrying
// apiToken are accepted, and at most quota aliases are created before the
// endpoint answers 402. A quota of zero or less means no limit.
func (h *Handler) SetAliasQuota(apiToken string, quota int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.apiToken = apiToken
	h.quota = quota
}

// RuntimeDataRequests returns the headers of every runtime data request
// received so far.
func (h *Handler) RuntimeDataRequests() []http.Header {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]http.Header(nil), h.requests...)
}

// Aliases returns the aliases created so far.
func (h *Handler) Aliases() []relay.Alias {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]relay.Alias(nil), h.aliases...)
}

func (h *Handler) serveRuntimeData(w http.ResponseWriter, req *http.Request) {
	h.mu.Lock()
	h.requests = append(h.requests, req.Header.Clone())
	content, status := h.runtimeData, h.status
	h.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if content == nil {
		http.NotFound(w, req)
		return
	}
	etag := fmt.Sprintf("%x", md5.Sum(content))
	w.Header().Set("Etag", etag)
	if req.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(content)
}

func (h *Handler) createAlias(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if req.PostForm.Get("api_token") == "" || req.PostForm.Get("api_token") != h.apiToken {
		http.Error(w, "invalid api token", http.StatusUnauthorized)
		return
	}
	if h.quota > 0 && len(h.aliases) >= h.quota {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"detail":"free tier alias limit reached"}`))
		return
	}
	id := len(h.aliases) + 1
	alias := relay.Alias{
		ID:          id,
		Address:     "alias" + strconv.Itoa(id),
		Domain:      relay.DomainMozmail,
		Kind:        relay.AliasRandom,
		Enabled:     true,
		Description: req.PostForm.Get("description"),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	h.aliases = append(h.aliases, alias)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(alias)
}
