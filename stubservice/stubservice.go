// Package stubservice serves an API contract document over HTTP: every documented
// endpoint answers with its success example. Headers let a caller ask for a documented
// error instead, which is how the HTTP transport is exercised end to end.
package stubservice

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/reservekit/api-contract-tests/apispec"

	"github.com/go-chi/chi/v5"
)

// ErrorHeader selects an error example, as "<status> <ERROR_CODE>".
const ErrorHeader = "X-Stub-Error"

// IdempotencyHeader is the request header whose reuse with a different body is rejected.
const IdempotencyHeader = "Idempotency-Key"

// RetryAfterSeconds is sent with every 429 response.
const RetryAfterSeconds = 60

// Options configures a Service.
type Options struct {
	// RequireAuth makes every request without a bearer token fail with 401.
	RequireAuth bool
}

// Service is an http.Handler stub of the documented API.
type Service struct {
	doc         *apispec.Document
	opts        Options
	router      chi.Router
	idempotency map[string]string
	lock        sync.Mutex
}

// New builds a Service for a document.
func New(doc *apispec.Document, opts Options) *Service {
	s := &Service{
		doc:         doc,
		opts:        opts,
		router:      chi.NewRouter(),
		idempotency: make(map[string]string),
	}
	for _, key := range doc.Keys() {
		ep, _ := doc.Endpoint(key)
		method, path, _ := apispec.SplitKey(key)
		if ep.RestfulURL != "" {
			path = ep.RestfulURL
		}
		s.router.MethodFunc(string(method), path, s.endpointHandler(key))
	}
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"errorCode": "ROUTE_NOT_FOUND",
			"message":   fmt.Sprintf("%s %s is not documented", r.Method, r.URL.Path),
		})
	})
	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Service) endpointHandler(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.RequireAuth && !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"errorCode": "UNAUTHORIZED",
				"message":   "Missing or invalid access token",
			})
			return
		}
		if sel := r.Header.Get(ErrorHeader); sel != "" {
			s.writeError(w, key, sel)
			return
		}
		if r.Method == http.MethodPost {
			if conflict := s.checkIdempotency(r); conflict {
				writeJSON(w, http.StatusConflict, s.errorBody(key, http.StatusConflict, "IDEMP_CONFLICT"))
				return
			}
		}
		status, err := s.doc.SuccessStatus(key)
		if err != nil {
			writeJSON(w, http.StatusNotImplemented, map[string]any{"message": err.Error()})
			return
		}
		body, _ := s.doc.SuccessExample(key)
		writeJSON(w, status, body)
	}
}

func (s *Service) writeError(w http.ResponseWriter, key, selector string) {
	fields := strings.Fields(selector)
	if len(fields) != 2 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed " + ErrorHeader})
		return
	}
	status, err := strconv.Atoi(fields[0])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "malformed " + ErrorHeader})
		return
	}
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}
	writeJSON(w, status, s.errorBody(key, status, fields[1]))
}

func (s *Service) errorBody(key string, status int, code string) any {
	if body, err := s.doc.ErrorExample(key, status, code); err == nil {
		return body
	}
	return map[string]any{"errorCode": code}
}

// checkIdempotency reports whether the request reuses an idempotency key with a different
// body. The first body seen for a key wins.
func (s *Service) checkIdempotency(r *http.Request) bool {
	key := r.Header.Get(IdempotencyHeader)
	if key == "" {
		return false
	}
	var body any
	_ = json.NewDecoder(r.Body).Decode(&body)
	canonical, _ := json.Marshal(body)

	s.lock.Lock()
	defer s.lock.Unlock()
	prev, seen := s.idempotency[key]
	if !seen {
		s.idempotency[key] = string(canonical)
		return false
	}
	return prev != string(canonical)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
