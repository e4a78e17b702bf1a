package fakeserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tuxinal/packwiz-parent-pack/pkg/paths"
)

// Server hosts a pack directory over HTTP under Prefix, the way a
// static host serves a published packwiz pack.
type Server struct {
	HS      *httptest.Server
	RootDir string
	Prefix  string

	mu       sync.Mutex
	requests map[string]int
	corrupt  map[string][]byte
	status   map[string]int
}

func New(rootDir string) *Server {
	s := &Server{
		RootDir:  rootDir,
		Prefix:   "/packs/base",
		requests: make(map[string]int),
		corrupt:  make(map[string][]byte),
		status:   make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(s.Prefix+"/", s.handleFile)
	s.HS = httptest.NewServer(mux)
	return s
}

func (s *Server) Close() {
	s.HS.Close()
}

func (s *Server) URL() string {
	return s.HS.URL
}

// PackURL is the URL of the hosted pack.toml.
func (s *Server) PackURL() string {
	return s.HS.URL + s.Prefix + "/pack.toml"
}

// Corrupt makes the server answer rel with body instead of the file on
// disk.
func (s *Server) Corrupt(rel string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt[rel] = body
}

// Fail makes the server answer rel with the given status code.
func (s *Server) Fail(rel string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[rel] = code
}

// Requests returns how many times rel was requested.
func (s *Server) Requests(rel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[rel]
}

func (s *Server) handleFile(
	w http.ResponseWriter, r *http.Request,
) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rel := strings.TrimPrefix(r.URL.Path, s.Prefix+"/")

	s.mu.Lock()
	s.requests[rel]++
	code, failed := s.status[rel]
	body, corrupted := s.corrupt[rel]
	s.mu.Unlock()

	if failed {
		http.Error(w, http.StatusText(code), code)
		return
	}
	if corrupted {
		w.Write(body)
		return
	}

	target, err := paths.Join(s.RootDir, rel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// MakeTree writes files (relative path to content) under dir.
func MakeTree(dir string, files map[string]string) error {
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}
