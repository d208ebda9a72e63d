package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// TVDBServer is an in-memory fake of the TheTVDB v2 endpoints used by this
// repository. Favorites are shared by every user.
type TVDBServer struct {
	URL    string
	APIKey string

	mu        sync.Mutex
	series    map[int64]string
	favorites []string
	calls     map[string]int
	failList  bool
}

// NewTVDBServer starts a fake API and registers cleanup.
func NewTVDBServer(t testing.TB) *TVDBServer {
	t.Helper()

	s := &TVDBServer{
		APIKey: "test-key",
		series: make(map[int64]string),
		calls:  make(map[string]int),
	}
	server := httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(server.Close)
	s.URL = server.URL
	return s
}

// AddSeries makes a series resolvable.
func (s *TVDBServer) AddSeries(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[id] = name
}

// SetFavorites replaces the favorite id list.
func (s *TVDBServer) SetFavorites(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = append([]string(nil), ids...)
}

// Favorites returns the current favorite ids.
func (s *TVDBServer) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.favorites...)
}

// FailFavorites makes GET /user/favorites return a server error.
func (s *TVDBServer) FailFavorites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = fail
}

// Calls returns how often "METHOD /path" was requested.
func (s *TVDBServer) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *TVDBServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[r.Method+" "+r.URL.Path]++

	if r.URL.Path == "/login" {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["apikey"] != s.APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"Error": "API Key Required"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "token-" + body["username"]})
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"Error": "Not authorized"})
		return
	}

	switch {
	case r.URL.Path == "/user/favorites" && r.Method == http.MethodGet:
		if s.failList {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"Error": "favorites unavailable"})
			return
		}
		writeData(w, map[string]any{"favorites": s.favorites})
	case strings.HasPrefix(r.URL.Path, "/user/favorites/"):
		id := strings.TrimPrefix(r.URL.Path, "/user/favorites/")
		switch r.Method {
		case http.MethodPut:
			if !contains(s.favorites, id) {
				s.favorites = append(s.favorites, id)
			}
		case http.MethodDelete:
			s.favorites = without(s.favorites, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ids := append([]string(nil), s.favorites...)
		sort.Strings(ids)
		writeData(w, map[string]any{"favorites": ids})
	case strings.HasPrefix(r.URL.Path, "/series/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/series/"), 10, 64)
		name, ok := s.series[id]
		if err != nil || !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"Error": "ID not found"})
			return
		}
		writeData(w, map[string]any{"id": id, "seriesName": name})
	default:
		http.NotFound(w, r)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
