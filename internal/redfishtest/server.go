// Package redfishtest runs a canned Redfish service for tests: a TLS server
// with a small in-memory resource tree, basic auth enforcement, and
// injectable failures.
package redfishtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Credentials every request must present.
const (
	Username = "admin"
	Password = "secret"
)

// Server serves the tree over TLS with a self-signed certificate, matching
// the targets the real client is built for.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	payloads    map[string]map[string]any
	statuses    map[string]int
	etags       map[string]string
	hits        map[string]int
	lastIfMatch string
	lastWrite   map[string]any
}

// New starts a server preloaded with a service root, a chassis collection
// with two members carrying thermal subresources, a manager collection, and
// a schema endpoint. Callers own Close.
func New() *Server {
	s := &Server{
		payloads: make(map[string]map[string]any),
		statuses: make(map[string]int),
		etags:    make(map[string]string),
		hits:     make(map[string]int),
	}
	s.seed()

	r := chi.NewRouter()
	r.Use(s.recordHits)
	r.Use(requireAuth)
	r.Get("/redirect", s.handleRedirect)
	r.Get("/*", s.handleGet)
	r.Patch("/*", s.handleWrite)
	r.Post("/*", s.handleWrite)

	s.Server = httptest.NewTLSServer(r)
	return s
}

// Host returns the host:port a client should dial.
func (s *Server) Host() string {
	return strings.TrimPrefix(s.URL, "https://")
}

// SetPayload installs or replaces the payload served at path.
func (s *Server) SetPayload(path string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[path] = payload
}

// FailWith makes path answer with the given status instead of a payload.
func (s *Server) FailWith(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
}

// SetEtag attaches an entity tag to GET responses for path.
func (s *Server) SetEtag(path, etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.etags[path] = etag
}

// Hits reports how many times path was requested.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// LastIfMatch returns the If-Match header of the most recent write.
func (s *Server) LastIfMatch() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIfMatch
}

// LastWrite returns the decoded body of the most recent write.
func (s *Server) LastWrite() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWrite
}

func (s *Server) seed() {
	s.payloads["/redfish/v1/"] = map[string]any{
		"@odata.id":   "/redfish/v1/",
		"@odata.type": "#ServiceRoot.v1_5_0.ServiceRoot",
		"Id":          "RootService",
		"Name":        "Root Service",
		"Chassis":     map[string]any{"@odata.id": "/redfish/v1/Chassis"},
		"Managers":    map[string]any{"@odata.id": "/redfish/v1/Managers"},
		"JsonSchemas": map[string]any{"@odata.id": "/redfish/v1/JsonSchemas"},
	}

	s.payloads["/redfish/v1/Chassis"] = map[string]any{
		"@odata.id":           "/redfish/v1/Chassis",
		"@odata.type":         "#ChassisCollection.ChassisCollection",
		"Name":                "Chassis Collection",
		"Members@odata.count": 2,
		"Members": []any{
			map[string]any{"@odata.id": "/redfish/v1/Chassis/1"},
			map[string]any{"@odata.id": "/redfish/v1/Chassis/2"},
		},
	}
	for _, id := range []string{"1", "2"} {
		s.payloads["/redfish/v1/Chassis/"+id] = map[string]any{
			"@odata.id":   "/redfish/v1/Chassis/" + id,
			"@odata.type": "#Chassis.v1_10_0.Chassis",
			"Id":          id,
			"Name":        "Chassis " + id,
			"ChassisType": "RackMount",
			"Thermal":     map[string]any{"@odata.id": "/redfish/v1/Chassis/" + id + "/Thermal"},
		}
		s.payloads["/redfish/v1/Chassis/"+id+"/Thermal"] = map[string]any{
			"@odata.id":   "/redfish/v1/Chassis/" + id + "/Thermal",
			"@odata.type": "#Thermal.v1_6_0.Thermal",
			"Id":          "Thermal",
			"Name":        "Thermal",
			"Temperatures": []any{
				map[string]any{"Name": "CPU Temp", "ReadingCelsius": 42},
			},
		}
	}

	s.payloads["/redfish/v1/Managers"] = map[string]any{
		"@odata.id":           "/redfish/v1/Managers",
		"@odata.type":         "#ManagerCollection.ManagerCollection",
		"Name":                "Manager Collection",
		"Members@odata.count": 1,
		"Members": []any{
			map[string]any{"@odata.id": "/redfish/v1/Managers/BMC"},
		},
	}
	s.payloads["/redfish/v1/Managers/BMC"] = map[string]any{
		"@odata.id":       "/redfish/v1/Managers/BMC",
		"@odata.type":     "#Manager.v1_5_0.Manager",
		"Id":              "BMC",
		"Name":            "Manager",
		"FirmwareVersion": "1.2.3",
		"Actions": map[string]any{
			"#Manager.Reset": map[string]any{
				"target": "/redfish/v1/Managers/BMC/Actions/Manager.Reset",
			},
		},
	}

	s.payloads["/redfish/v1/JsonSchemas"] = map[string]any{
		"@odata.id":   "/redfish/v1/JsonSchemas",
		"@odata.type": "#JsonSchemaFileCollection.JsonSchemaFileCollection",
		"Name":        "Schema Repository",
	}
}

func (s *Server) recordHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != Username || pass != Password {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/redfish/v1/", http.StatusTemporaryRedirect)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status, failed := s.statuses[r.URL.Path]
	payload, ok := s.payloads[r.URL.Path]
	etag := s.etags[r.URL.Path]
	s.mu.Unlock()

	if failed {
		http.Error(w, `{"error":"injected failure"}`, status)
		return
	}
	if !ok {
		http.Error(w, `{"error":"no such resource"}`, http.StatusNotFound)
		return
	}
	if etag != "" {
		w.Header().Set("Etag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"bad payload"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.lastIfMatch = r.Header.Get("If-Match")
	s.lastWrite = body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"Applied": true})
}
