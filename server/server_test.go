package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/tagscope/analyzer"
	"github.com/seo-optimizer/tagscope/fetcher"
	"github.com/seo-optimizer/tagscope/logging"
	"github.com/seo-optimizer/tagscope/service"
	"github.com/seo-optimizer/tagscope/storage"
)

const page = `<html><head>
<title>Field Notes on Building Durable Web Services</title>
<meta name="description" content="A collection of notes.">
<meta property="og:title" content="Field Notes">
</head><body></body></html>`

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *httptest.Server, *logging.Statistics) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	svc := service.New(fetcher.New(fetcher.Options{}), storage.NewMemoryStore(), nil, service.DefaultOptions())
	t.Cleanup(svc.Close)

	requests := logging.New("", false)
	router := New(Options{Service: svc, Requests: requests})
	return router, upstream, requests
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != `{"status":"ok"}` {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestAnalyzeAndLookup(t *testing.T) {
	router, upstream, requests := newTestRouter(t)
	target := upstream.URL + "/notes"

	w := doJSON(router, http.MethodPost, "/api/analyze", `{"url":"`+target+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result analyzer.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.URL != target {
		t.Errorf("Expected URL %s, got %s", target, result.URL)
	}
	if len(result.TagInventory) != 7 {
		t.Errorf("Expected 7 inventory entries, got %d", len(result.TagInventory))
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"socialPreview":{"facebook"`)) {
		t.Errorf("Expected socialPreview key in body: %s", w.Body.String())
	}

	if requests.TotalRequests() != 1 {
		t.Errorf("Expected 1 tracked analysis, got %d", requests.TotalRequests())
	}

	w = doJSON(router, http.MethodGet, "/api/recent-analyses", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var recent []storage.Record
	if err := json.Unmarshal(w.Body.Bytes(), &recent); err != nil {
		t.Fatalf("Failed to decode recent analyses: %v", err)
	}
	if len(recent) != 1 || recent[0].OverallScore != result.ScoreData.Overall {
		t.Fatalf("Unexpected recent analyses: %+v", recent)
	}

	w = doJSON(router, http.MethodGet, "/api/analyses/"+strconv.FormatInt(recent[0].ID, 10), "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for lookup by id, got %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/analyses?url="+target+"/", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for lookup by url, got %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/statistics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var summary map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode statistics: %v", err)
	}
	if summary["cacheEntries"] != float64(1) || summary["totalRequests"] != float64(1) {
		t.Errorf("Unexpected statistics: %v", summary)
	}
}

func TestErrorResponses(t *testing.T) {
	router, upstream, _ := newTestRouter(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"MissingURL", http.MethodPost, "/api/analyze", `{}`, http.StatusBadRequest, "Invalid URL provided"},
		{"MalformedURL", http.MethodPost, "/api/analyze", `{"url":"not-a-url"}`, http.StatusBadRequest, "Invalid URL provided"},
		{"UnsupportedScheme", http.MethodPost, "/api/analyze", `{"url":"ftp://example.com/file"}`, http.StatusBadRequest, "Invalid URL provided"},
		{"UpstreamStatus", http.MethodPost, "/api/analyze", `{"url":"` + upstream.URL + `/gone"}`, http.StatusBadRequest, "Failed to fetch the URL: 410 Gone"},
		{"BadLimit", http.MethodGet, "/api/recent-analyses?limit=abc", "", http.StatusBadRequest, "limit must be a positive integer"},
		{"BadID", http.MethodGet, "/api/analyses/abc", "", http.StatusBadRequest, "id must be a positive integer"},
		{"UnknownID", http.MethodGet, "/api/analyses/99", "", http.StatusNotFound, "Analysis not found"},
		{"UnknownURL", http.MethodGet, "/api/analyses?url=https://example.com/none", "", http.StatusNotFound, "Analysis not found"},
		{"LookupWithoutURL", http.MethodGet, "/api/analyses", "", http.StatusBadRequest, "Invalid URL provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			if msg := errorMessage(t, w); msg != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, msg)
			}
		})
	}
}
