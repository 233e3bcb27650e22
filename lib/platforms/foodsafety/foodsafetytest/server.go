// Package foodsafetytest serves an in-memory COOKRCP01 catalog over
// httptest for use in tests.
package foodsafetytest

import (
	"cookclip/lib/platforms/foodsafety"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const ApiKey = "test-key"

type Server struct {
	*httptest.Server

	lock     sync.Mutex
	recipes  []foodsafety.Recipe
	requests []string
	// when set, every request answers with this result code
	failCode    string
	failMessage string
	failStatus  int
}

// NewServer starts a server that answers like COOKRCP01 over recipes. It
// is closed when the test ends.
func NewServer(t testing.TB, recipes []foodsafety.Recipe) *Server {
	s := &Server{recipes: recipes}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Recipes generates n recipes with ids "1".."n" and titles "recipe 1"...
func Recipes(n int) []foodsafety.Recipe {
	out := make([]foodsafety.Recipe, n)
	for i := range out {
		id := strconv.Itoa(i + 1)
		out[i] = foodsafety.Recipe{
			ID:          id,
			Title:       "recipe " + id,
			Ingredients: "ingredient " + id,
			Category:    "반찬",
			Method:      "굽기",
		}
	}
	return out
}

func (s *Server) Options() foodsafety.ClientOptions {
	return foodsafety.ClientOptions{
		BaseUrl:           s.URL,
		ApiKey:            ApiKey,
		RequestsPerSecond: 1000,
	}
}

func (s *Server) Client(t testing.TB) *foodsafety.Client {
	client, err := foodsafety.NewClient(s.Options())
	if err != nil {
		t.Fatal(err)
	}
	return client
}

// FailWith makes every following request report code with message.
func (s *Server) FailWith(code, message string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failCode = code
	s.failMessage = message
}

// FailStatus makes every following request answer with an http status.
func (s *Server) FailStatus(status int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failStatus = status
}

func (s *Server) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failCode = ""
	s.failMessage = ""
	s.failStatus = 0
}

// Requests lists the decoded request paths seen so far.
func (s *Server) Requests() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.requests = append(s.requests, r.URL.Path)

	if s.failStatus != 0 {
		w.WriteHeader(s.failStatus)
		return
	}

	// /api/{key}/COOKRCP01/json/{start}/{end}[/{FIELD}="{term}"]
	segments := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if len(segments) < 6 || segments[0] != "api" || segments[2] != foodsafety.ServiceName {
		http.NotFound(w, r)
		return
	}
	if segments[1] != ApiKey {
		writeJSON(w, map[string]any{
			"RESULT": map[string]string{"CODE": "INFO-100", "MSG": "인증키가 유효하지 않습니다."},
		})
		return
	}
	if s.failCode != "" {
		writeJSON(w, map[string]any{
			foodsafety.ServiceName: map[string]any{
				"RESULT": map[string]string{"CODE": s.failCode, "MSG": s.failMessage},
			},
		})
		return
	}

	start, err1 := strconv.Atoi(segments[4])
	end, err2 := strconv.Atoi(segments[5])
	if err1 != nil || err2 != nil || start < 1 || end < start {
		writeJSON(w, map[string]any{
			foodsafety.ServiceName: map[string]any{
				"RESULT": map[string]string{"CODE": "ERROR-336", "MSG": "데이터요청은 한번에 최대 1000건을 넘을 수 없습니다."},
			},
		})
		return
	}

	matching := s.recipes
	if len(segments) > 6 {
		field, term, ok := strings.Cut(strings.Join(segments[6:], "/"), "=")
		if !ok {
			http.NotFound(w, r)
			return
		}
		term = strings.Trim(term, `"`)
		matching = filter(s.recipes, field, term)
	}

	var rows []map[string]string
	for i := start - 1; i < end && i < len(matching); i++ {
		rows = append(rows, foodsafety.WireRow(matching[i]))
	}
	if len(rows) == 0 {
		writeJSON(w, map[string]any{
			foodsafety.ServiceName: map[string]any{
				"total_count": "0",
				"RESULT":      map[string]string{"CODE": "INFO-200", "MSG": "해당하는 데이터가 없습니다."},
			},
		})
		return
	}
	writeJSON(w, map[string]any{
		foodsafety.ServiceName: map[string]any{
			"total_count": fmt.Sprint(len(matching)),
			"row":         rows,
			"RESULT":      map[string]string{"CODE": "INFO-000", "MSG": "정상처리되었습니다."},
		},
	})
}

func filter(recipes []foodsafety.Recipe, field, term string) []foodsafety.Recipe {
	var out []foodsafety.Recipe
	for _, r := range recipes {
		value := r.Title
		if field == "RCP_PARTS_DTLS" {
			value = r.Ingredients
		}
		if strings.Contains(value, term) {
			out = append(out, r)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("content-type", "application/json")
	json.NewEncoder(w).Encode(body)
}
