/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package stub serves an in-process copy of the users API that reproduces the
// behaviour observed on the public service: listings are paginated, lookups of
// unknown users are 404, while creates and updates echo whatever JSON object
// they are given and deletes always succeed.
package stub

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unikorn-cloud/users-acceptance/pkg/openapi"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	// APIKeyHeader carries the optional API key.
	APIKeyHeader = "X-Api-Key"

	// timestampFormat matches the millisecond precision UTC timestamps of the
	// public service.
	timestampFormat = "2006-01-02T15:04:05.000Z"

	// firstGeneratedID keeps generated ids clear of the seeded ones.
	firstGeneratedID = 100

	// maxPerPage bounds the page size a client may ask for.
	maxPerPage = 100
)

type errorResponse struct {
	Error string `json:"error"`
}

type listResponse struct {
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	Data       []User `json:"data"`
}

type userResponse struct {
	Data User `json:"data"`
}

// Server is the stub users API.
type Server struct {
	options  *Options
	logger   logr.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	users    []User
	index    map[int]User
	nextID   atomic.Int64
	now      func() time.Time
}

// New returns a stub server. A nil registry gets a private one.
func New(options *Options, logger logr.Logger, registry *prometheus.Registry) (*Server, error) {
	if options == nil {
		options = NewOptions()
	}

	if options.PerPage <= 0 {
		return nil, fmt.Errorf("%w: per page must be positive, got %d", ErrInvalidOptions, options.PerPage)
	}

	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	users, err := SeedUsers()
	if err != nil {
		return nil, err
	}

	index := make(map[int]User, len(users))

	for _, user := range users {
		index[user.ID] = user
	}

	s := &Server{
		options:  options,
		logger:   logger,
		registry: registry,
		metrics:  NewMetrics(options.MetricsNamespace, registry),
		users:    users,
		index:    index,
		now:      time.Now,
	}

	s.nextID.Store(firstGeneratedID)

	return s, nil
}

var ErrInvalidOptions = errors.New("invalid stub options")

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging(s.logger))
	r.Use(s.metrics.Instrument)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/openapi.yaml", serveDocument)

	prefix := strings.TrimSuffix(s.options.Prefix, "/")
	if prefix == "" {
		s.routes(r)
	} else {
		r.Route(prefix, s.routes)
	}

	return r
}

// serveDocument serves the OpenAPI description of the users API.
func serveDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")

	if _, err := w.Write(openapi.Spec()); err != nil {
		log.FromContext(r.Context()).Error(err, "writing openapi document")
	}
}

func (s *Server) routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(requireAPIKey(s.options.APIKey))

		r.Get("/users", s.listUsers)
		r.Post("/users", s.createUser)
		r.Get("/users/{id}", s.getUser)
		r.Put("/users/{id}", s.updateUser)
		r.Delete("/users/{id}", s.deleteUser)
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.FromContext(r.Context()).Error(err, "writing response body")
	}
}

// positiveQueryInt returns the named query parameter, or def when it is
// missing or not a positive integer.
func positiveQueryInt(r *http.Request, name string, def int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || value < 1 {
		return def
	}

	return value
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page := positiveQueryInt(r, "page", 1)
	perPage := min(positiveQueryInt(r, "per_page", s.options.PerPage), maxPerPage)

	total := len(s.users)

	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}

	data := []User{}

	// Pages past the end are empty, checked before multiplying so huge page
	// numbers cannot overflow.
	if total > 0 && page-1 <= (total-1)/perPage {
		start := (page - 1) * perPage
		end := min(start+perPage, total)
		data = s.users[start:end]
	}

	writeJSON(w, r, http.StatusOK, listResponse{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		Data:       data,
	})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	var id openapi.UserID

	if err := id.UnmarshalText([]byte(chi.URLParam(r, "id"))); err != nil {
		writeJSON(w, r, http.StatusNotFound, struct{}{})
		return
	}

	user, ok := s.index[id.Value]
	if !ok {
		writeJSON(w, r, http.StatusNotFound, struct{}{})
		return
	}

	writeJSON(w, r, http.StatusOK, userResponse{Data: user})
}

// decodeObject reads any JSON object, keeping numbers verbatim so they are
// echoed exactly as sent. An empty body is treated as an empty object.
func decodeObject(r *http.Request) (map[string]interface{}, error) {
	object := map[string]interface{}{}

	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	if err := decoder.Decode(&object); err != nil {
		if errors.Is(err, io.EOF) {
			return object, nil
		}

		return nil, err
	}

	// A literal null decodes to a nil map.
	if object == nil {
		object = map[string]interface{}{}
	}

	return object, nil
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	object, err := decodeObject(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "Bad Request"})
		return
	}

	object["id"] = strconv.FormatInt(s.nextID.Add(1), 10)
	object["createdAt"] = s.now().UTC().Format(timestampFormat)

	writeJSON(w, r, http.StatusCreated, object)
}

// updateUser echoes the submitted fields for any id, whether or not the user
// exists.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	object, err := decodeObject(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "Bad Request"})
		return
	}

	object["updatedAt"] = s.now().UTC().Format(timestampFormat)

	writeJSON(w, r, http.StatusOK, object)
}

// deleteUser never reports missing users.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).V(1).Info("deleting user", "id", chi.URLParam(r, "id"))

	w.WriteHeader(http.StatusNoContent)
}
