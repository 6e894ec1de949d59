package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeJSONServer is a tiny json-server: collections of JSON objects keyed by id.
type fakeJSONServer struct {
	mu     sync.Mutex
	data   map[string]map[string]map[string]any
	nextID int

	// failures injected per "METHOD /collection"
	fail map[string]int

	srv *httptest.Server
}

func newFakeJSONServer(t *testing.T) *fakeJSONServer {
	t.Helper()
	f := &fakeJSONServer{
		data: map[string]map[string]map[string]any{
			"users": {}, "events": {}, "registrations": {},
		},
		nextID: 100,
		fail:   map[string]int{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeJSONServer) client() *Client {
	c := NewClient(DefaultConfig(f.srv.URL))
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func (f *fakeJSONServer) seed(collection, id string, obj map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj["id"] = id
	f.data[collection][id] = obj
}

func (f *fakeJSONServer) get(collection, id string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.data[collection][id]
	return obj, ok
}

func (f *fakeJSONServer) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data[collection])
}

func (f *fakeJSONServer) failNext(method, collection string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method+" /"+collection] = status
}

// matchesQuery applies json-server's field=value filters.
func matchesQuery(obj map[string]any, q url.Values) bool {
	for field, want := range q {
		if strings.HasPrefix(field, "_") {
			continue
		}
		if fmt.Sprint(obj[field]) != want[0] {
			return false
		}
	}
	return true
}

func (f *fakeJSONServer) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	coll, ok := f.data[parts[0]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if status, ok := f.fail[r.Method+" /"+parts[0]]; ok {
		delete(f.fail, r.Method+" /"+parts[0])
		w.WriteHeader(status)
		return
	}

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			ids := make([]string, 0, len(coll))
			for id := range coll {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			out := make([]map[string]any, 0, len(ids))
			for _, id := range ids {
				if matchesQuery(coll[id], r.URL.Query()) {
					out = append(out, coll[id])
				}
			}
			writeJSON(http.StatusOK, out)
		case http.MethodPost:
			var obj map[string]any
			if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.nextID++
			id := strconv.Itoa(f.nextID)
			obj["id"] = id
			coll[id] = obj
			writeJSON(http.StatusCreated, obj)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := parts[1]
	obj, exists := coll[id]
	if !exists {
		writeJSON(http.StatusNotFound, map[string]any{})
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(http.StatusOK, obj)
	case http.MethodPut, http.MethodPatch:
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Method == http.MethodPut {
			obj = map[string]any{}
		}
		for k, v := range in {
			obj[k] = v
		}
		obj["id"] = id
		coll[id] = obj
		writeJSON(http.StatusOK, obj)
	case http.MethodDelete:
		delete(coll, id)
		writeJSON(http.StatusOK, map[string]any{})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
