package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"skillscan/internal/types"
	"skillscan/pkg/pipeline"
)

// maxBodyBytes bounds the JSON bodies on the proxy endpoints (2 MB).
const maxBodyBytes = 2 << 20

type Config struct {
	Port        string
	Environment string
}

// Server is the credential-holding relay between the browser and the two
// upstream services. It keeps no state between requests.
type Server struct {
	config   Config
	pipeline *pipeline.Pipeline
	skills   types.SkillExtractor
	search   types.JobSearcher
}

func New(config Config, p *pipeline.Pipeline, skills types.SkillExtractor, search types.JobSearcher) *Server {
	if config.Port == "" {
		config.Port = "8080"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	return &Server{
		config:   config,
		pipeline: p,
		skills:   skills,
		search:   search,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/extract-skills", s.handleExtractSkills)
	mux.HandleFunc("/api/search-jobs", s.handleSearchJobs)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return corsMiddleware(mux)
}

func (s *Server) Start() error {
	log.Printf("[server] listening on port %s", s.config.Port)
	return http.ListenAndServe(":"+s.config.Port, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":          true,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.config.Environment,
	})
}

type extractSkillsRequest struct {
	ResumeText string `json:"resumeText"`
}

type extractSkillsResponse struct {
	Skills []string `json:"skills"`
}

func (s *Server) handleExtractSkills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req extractSkillsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.ResumeText)) < 10 {
		writeError(w, http.StatusBadRequest, "Invalid resumeText")
		return
	}

	skills, err := s.skills.ExtractSkills(r.Context(), req.ResumeText)
	if err != nil {
		writeError(w, upstreamStatus(err), err.Error())
		return
	}
	if skills == nil {
		skills = []string{}
	}

	writeJSON(w, http.StatusOK, extractSkillsResponse{Skills: skills})
}

type searchJobsRequest struct {
	Skills []string `json:"skills"`
	// Country is accepted for compatibility with older clients; the target
	// country is fixed server-side.
	Country string `json:"country"`
}

func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req searchJobsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req.Skills) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid skills")
		return
	}

	jobs, err := s.search.Search(r.Context(), req.Skills)
	if err != nil {
		writeError(w, upstreamStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// upstreamStatus maps an analysis error to the relay's response status:
// upstream failures surface as 502, everything else as 500.
func upstreamStatus(err error) int {
	if kind, ok := types.KindOf(err); ok && kind == types.KindUpstream {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
