package stepik

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/stepik-tools/sync-service/internal/models"
	"github.com/stepik-tools/sync-service/internal/utils"
)

func testLogger() utils.Logger {
	return utils.NewDevelopmentLogger()
}

// fakePlatform is an in-memory stand-in for the learning platform API. It
// serves the token endpoint plus the four collection endpoints the pipeline
// consumes, and records enough about incoming requests to assert on.
type fakePlatform struct {
	mu sync.Mutex

	unitsPages       map[int]unitsResponse
	lessonSteps      map[int64][]int64
	submissionsPages map[int64]map[int]submissionsResponse
	attemptUsers     map[int64]int64

	tokenRequests    int
	tokenDelay       time.Duration
	unitsStatus      int // non-zero forces this status on /api/units
	attemptsRequests [][]int64

	server *httptest.Server
}

func newFakePlatform() *fakePlatform {
	p := &fakePlatform{
		unitsPages:       make(map[int]unitsResponse),
		lessonSteps:      make(map[int64][]int64),
		submissionsPages: make(map[int64]map[int]submissionsResponse),
		attemptUsers:     make(map[int64]int64),
	}
	p.server = httptest.NewServer(http.HandlerFunc(p.handle))
	return p
}

func (p *fakePlatform) Close() {
	p.server.Close()
}

func (p *fakePlatform) URL() string {
	return p.server.URL
}

func (p *fakePlatform) client() *Client {
	return NewClient(ClientConfig{
		BaseURL:        p.server.URL,
		ClientID:       "test-client",
		ClientSecret:   "test-secret",
		RequestTimeout: 5 * time.Second,
		Logger:         testLogger(),
	})
}

func (p *fakePlatform) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/oauth2/token/":
		p.handleToken(w, r)
	case "/api/units":
		p.handleUnits(w, r)
	case "/api/steps":
		p.handleSteps(w, r)
	case "/api/submissions":
		p.handleSubmissions(w, r)
	case "/api/attempts":
		p.handleAttempts(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (p *fakePlatform) handleToken(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.tokenRequests++
	delay := p.tokenDelay
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	writeJSON(w, tokenResponse{AccessToken: "test-token", TokenType: "Bearer", ExpiresIn: 36000})
}

func (p *fakePlatform) handleUnits(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	status := p.unitsStatus
	p.mu.Unlock()
	if status != 0 {
		http.Error(w, "forced failure", status)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	resp, ok := p.unitsPages[page]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, resp)
}

func (p *fakePlatform) handleSteps(w http.ResponseWriter, r *http.Request) {
	lessonID, _ := strconv.ParseInt(r.URL.Query().Get("lesson"), 10, 64)
	ids, ok := p.lessonSteps[lessonID]
	if !ok {
		http.NotFound(w, r)
		return
	}
	resp := stepsResponse{}
	for i, id := range ids {
		resp.Steps = append(resp.Steps, step{ID: id, Lesson: lessonID, Position: i + 1})
	}
	writeJSON(w, resp)
}

func (p *fakePlatform) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	stepID, _ := strconv.ParseInt(r.URL.Query().Get("step"), 10, 64)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	pages, ok := p.submissionsPages[stepID]
	if !ok {
		// A step nobody touched yet: one empty page
		writeJSON(w, submissionsResponse{Meta: pageMeta{Page: page}})
		return
	}
	resp, ok := pages[page]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, resp)
}

func (p *fakePlatform) handleAttempts(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	for _, raw := range r.URL.Query()["ids[]"] {
		id, _ := strconv.ParseInt(raw, 10, 64)
		ids = append(ids, id)
	}

	p.mu.Lock()
	p.attemptsRequests = append(p.attemptsRequests, ids)
	p.mu.Unlock()

	resp := attemptsResponse{}
	for _, id := range ids {
		user, ok := p.attemptUsers[id]
		if !ok {
			continue
		}
		resp.Attempts = append(resp.Attempts, models.Attempt{ID: id, User: user})
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
