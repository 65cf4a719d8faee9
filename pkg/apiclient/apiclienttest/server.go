// Package apiclienttest provides a recording fake backend for tests of code
// built on apiclient.
package apiclienttest

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Request is a request the fake backend received.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	ContentType   string
	Body          []byte
	// FileField, FileName and FileData are set for multipart uploads.
	FileField string
	FileName  string
	FileData  []byte
}

// JSON decodes the request body into v.
func (r Request) JSON(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode request body %q: %v", r.Body, err)
	}
}

// Response is what a route answers with.
type Response struct {
	Status int
	Body   string
}

// Server is an httptest.Server with per-route canned responses. Unrouted
// requests get 404.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]Response
	requests []Request
}

// NewServer starts a server and closes it when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]Response)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle sets the response for "METHOD /path".
func (s *Server) Handle(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = Response{Status: status, Body: body}
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns received requests whose path starts with prefix.
func (s *Server) RequestsTo(prefix string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if strings.HasPrefix(r.Path, prefix) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	}
	readMultipart(&req)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	resp, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if resp.Body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}

func readMultipart(req *Request) {
	mediaType, params, err := mime.ParseMediaType(req.ContentType)
	if err != nil || mediaType != "multipart/form-data" {
		return
	}
	mr := multipart.NewReader(strings.NewReader(string(req.Body)), params["boundary"])
	part, err := mr.NextPart()
	if err != nil {
		return
	}
	defer part.Close()
	data, _ := io.ReadAll(part)
	req.FileField = part.FormName()
	req.FileName = part.FileName()
	req.FileData = data
}
