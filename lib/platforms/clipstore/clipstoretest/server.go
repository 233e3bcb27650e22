// Package clipstoretest serves an in-memory /cookclip collection over
// httptest for use in tests.
package clipstoretest

import (
	"cookclip/lib/platforms/clipstore"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type Server struct {
	*httptest.Server

	lock       sync.Mutex
	clips      []clipstore.Clip
	nextId     int
	numericIds bool
	failStatus int
	calls      map[string]int
}

func NewServer(t testing.TB, clips ...clipstore.Clip) *Server {
	s := &Server{calls: map[string]int{}}
	for _, c := range clips {
		s.add(c)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Client() *clipstore.Client {
	return clipstore.NewClient(clipstore.ClientOptions{BaseUrl: s.URL})
}

// add assigns the next id when c.ID is empty.
func (s *Server) add(c clipstore.Clip) clipstore.Clip {
	if c.ID == "" {
		s.nextId++
		c.ID = strconv.Itoa(s.nextId)
	} else if n, err := strconv.Atoi(c.ID); err == nil && n > s.nextId {
		s.nextId = n
	}
	s.clips = append(s.clips, c)
	return c
}

func (s *Server) Clips() []clipstore.Clip {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]clipstore.Clip(nil), s.clips...)
}

// SetNumericIds makes the server encode ids as JSON numbers like
// json-server does, instead of strings like mockapi.
func (s *Server) SetNumericIds(numeric bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.numericIds = numeric
}

// FailStatus makes every following request answer with status, 0 resets.
func (s *Server) FailStatus(status int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failStatus = status
}

// Calls counts requests per method.
func (s *Server) Calls(method string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[method]
}

func (s *Server) encode(c clipstore.Clip) map[string]any {
	out := map[string]any{
		"id":      c.ID,
		"uid":     c.UID,
		"cookid":  c.RecipeID,
		"comment": c.Comment,
	}
	if n, err := strconv.Atoi(c.ID); s.numericIds && err == nil {
		out["id"] = n
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls[r.Method]++

	if s.failStatus != 0 {
		http.Error(w, "unavailable", s.failStatus)
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/cookclip")
	if !ok {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(rest, "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			out := make([]map[string]any, 0, len(s.clips))
			for _, c := range s.clips {
				out = append(out, s.encode(c))
			}
			writeJSON(w, http.StatusOK, out)
		case http.MethodPost:
			var body clipstore.Clip
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			body.ID = ""
			writeJSON(w, http.StatusCreated, s.encode(s.add(body)))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idx := -1
	for i, c := range s.clips {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.encode(s.clips[idx]))
	case http.MethodPut:
		var body struct {
			Comment *string `json:"comment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if body.Comment != nil {
			s.clips[idx].Comment = *body.Comment
		}
		writeJSON(w, http.StatusOK, s.encode(s.clips[idx]))
	case http.MethodDelete:
		removed := s.clips[idx]
		s.clips = append(s.clips[:idx], s.clips[idx+1:]...)
		writeJSON(w, http.StatusOK, s.encode(removed))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
