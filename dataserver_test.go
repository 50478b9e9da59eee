package relay

import (
	"crypto/md5"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type dataServer struct {
	srv *httptest.Server
	t   testing.TB

	mu        sync.Mutex
	resp      *dataResponse
	responses []dataResponse
	headers   []http.Header
}

type dataResponse struct {
	status int
	body   string
	sleep  time.Duration
}

func newDataServer(t testing.TB) *dataServer {
	srv := &dataServer{
		t: t,
	}
	srv.srv = httptest.NewServer(srv)
	t.Cleanup(srv.srv.Close)
	return srv
}

// config returns a configuration suitable for creating
// a client that talks to srv.
func (srv *dataServer) config() Config {
	return Config{
		Profile:  baseProfile(),
		BaseURL:  srv.srv.URL,
		Logger:   newTestLogger(srv.t),
		LogLevel: LogLevelDebug,
	}
}

// setResponse sets the response that will be returned from the server.
func (srv *dataServer) setResponse(response dataResponse) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.resp = &response
}

func (srv *dataServer) setResponseJSON(x interface{}) {
	srv.setResponse(dataResponse{
		body: marshalJSON(x),
	})
}

// allResponses returns all the responses that have been served over
// the lifetime of the server.
func (srv *dataServer) allResponses() []dataResponse {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return append([]dataResponse(nil), srv.responses...)
}

// allHeaders returns the headers of every request received so far.
func (srv *dataServer) allHeaders() []http.Header {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return append([]http.Header(nil), srv.headers...)
}

func (srv *dataServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != apiPrefix+runtimeDataPath {
		srv.t.Errorf("unexpected HTTP call: %s %s", req.Method, req.URL)
		http.NotFound(w, req)
		return
	}
	if req.Method != "GET" {
		srv.t.Errorf("unexpected HTTP method: %s", req.Method)
		http.Error(w, "only GET is allowed", http.StatusMethodNotAllowed)
		return
	}
	srv.mu.Lock()
	srv.headers = append(srv.headers, req.Header.Clone())
	resp0 := srv.resp
	srv.mu.Unlock()
	if resp0 == nil {
		srv.t.Errorf("HTTP call with no response provided")
		http.Error(w, "unexpected call", http.StatusInternalServerError)
		return
	}
	resp := *resp0
	time.Sleep(resp.sleep)
	if resp.status == 0 {
		w.Header().Set("Etag", etagOf(resp.body))
		if req.Header.Get("If-None-Match") == etagOf(resp.body) {
			resp.status = http.StatusNotModified
			resp.body = ""
		} else {
			resp.status = http.StatusOK
		}
	}
	// Record the response before writing it so that it's visible as
	// soon as the client has received it.
	srv.mu.Lock()
	srv.responses = append(srv.responses, resp)
	srv.mu.Unlock()

	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

func etagOf(content string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(content)))
}

func marshalJSON(x interface{}) string {
	data, err := json.Marshal(x)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// testRuntimeData returns a document that differs from
// DefaultRuntimeData, tagged so that versions can be told apart.
func testRuntimeData(tag string) *RuntimeData {
	rd := DefaultRuntimeData()
	rd.FxaOrigin = "https://accounts.example.com"
	rd.CSPNonce = tag
	rd.WaffleFlags = Waffles{{Name: "tips", Active: true}}
	return rd
}

// testLogger implements the Logger interface by logging to the test.T
// instance.
type testLogger struct {
	sync.RWMutex

	t    testing.TB
	logs []string
}

func newTestLogger(t testing.TB) Logger {
	return &testLogger{
		t: t,
	}
}

func (log *testLogger) GetLevel() LogLevel {
	return LogLevelDebug
}

func (log *testLogger) logf(level, format string, args ...interface{}) {
	log.Lock()
	defer log.Unlock()
	s := fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
	log.logs = append(log.logs, s)
	log.t.Log(s)
}

func (log *testLogger) Debugf(format string, args ...interface{}) {
	log.logf("DEBUG", format, args...)
}

func (log *testLogger) Infof(format string, args ...interface{}) {
	log.logf("INFO", format, args...)
}

func (log *testLogger) Warnf(format string, args ...interface{}) {
	log.logf("WARN", format, args...)
}

func (log *testLogger) Errorf(format string, args ...interface{}) {
	log.logf("ERROR", format, args...)
}

func (log *testLogger) Logs() []string {
	log.RLock()
	defer log.RUnlock()
	return append([]string(nil), log.logs...)
}
