package testhelpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"accredify/apiclient"
)

// FakeBackend is an in-memory stand-in for the accreditation REST API,
// served from an httptest.Server under the /api prefix.
type FakeBackend struct {
	Server *httptest.Server

	mu           sync.Mutex
	users        map[string]string
	token        string
	modules      []apiclient.Module
	proformas    []apiclient.ProformaTemplate
	assignments  []apiclient.Assignment
	institutions []apiclient.Institution
	compliances  []apiclient.Compliance
	seq          int
	failures     map[string]int
	requests     []RecordedRequest
}

// RecordedRequest is one request the fake received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

// NewFakeBackend starts an empty fake with one user "admin"/"secret" whose
// login yields the token "test-token". The server is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		users:    map[string]string{"admin": "secret"},
		token:    "test-token",
		failures: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/accounts/login/", fb.handleLogin)
	mux.HandleFunc("GET /api/dashboard/summary/", fb.auth(fb.handleSummary))
	mux.HandleFunc("GET /api/modules/", fb.auth(fb.handleModules))
	mux.HandleFunc("GET /api/modules/{id}/", fb.auth(fb.handleModule))
	mux.HandleFunc("GET /api/proformas/", fb.auth(fb.handleProformas))
	mux.HandleFunc("GET /api/proformas/{id}/", fb.auth(fb.handleProforma))
	mux.HandleFunc("GET /api/assignments/", fb.auth(fb.handleAssignments))
	mux.HandleFunc("GET /api/assignments/{id}/", fb.auth(fb.handleAssignment))
	mux.HandleFunc("GET /api/organizations/institutions/", fb.auth(fb.handleInstitutions))
	mux.HandleFunc("GET /api/pg/compliance/", fb.auth(fb.handleComplianceList))
	mux.HandleFunc("POST /api/pg/compliance/", fb.auth(fb.handleComplianceCreate))
	mux.HandleFunc("PATCH /api/pg/compliance/{id}/", fb.auth(fb.handleComplianceUpdate))

	fb.Server = httptest.NewServer(fb.record(mux))
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL is the API base URL to hand to apiclient.New.
func (fb *FakeBackend) URL() string { return fb.Server.URL + "/api" }

// Token is the access token a successful login returns.
func (fb *FakeBackend) Token() string { return fb.token }

// FailOn makes every request whose method matches and whose path (without
// the /api prefix) starts with prefix answer with status.
func (fb *FakeBackend) FailOn(method, prefix string, status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[method+" "+prefix] = status
}

// ClearFailures removes every FailOn rule.
func (fb *FakeBackend) ClearFailures() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures = map[string]int{}
}

func (fb *FakeBackend) SetModules(m ...apiclient.Module) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.modules = m
}

func (fb *FakeBackend) SetProformas(p ...apiclient.ProformaTemplate) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.proformas = p
}

func (fb *FakeBackend) SetAssignments(a ...apiclient.Assignment) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.assignments = a
}

func (fb *FakeBackend) SetInstitutions(i ...apiclient.Institution) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.institutions = i
}

// AddCompliance stores a record directly, assigning an id when empty.
func (fb *FakeBackend) AddCompliance(c apiclient.Compliance) apiclient.Compliance {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if c.ID == "" {
		fb.seq++
		c.ID = fmt.Sprintf("c%d", fb.seq)
	}
	fb.compliances = append(fb.compliances, c)
	return c
}

// Compliances returns a copy of every stored record.
func (fb *FakeBackend) Compliances() []apiclient.Compliance {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]apiclient.Compliance(nil), fb.compliances...)
}

// Requests returns the requests received so far.
func (fb *FakeBackend) Requests() []RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]RecordedRequest(nil), fb.requests...)
}

// RequestsTo returns the recorded requests with the given method whose path
// starts with prefix (without /api).
func (fb *FakeBackend) RequestsTo(method, prefix string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range fb.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// SeedPMDC loads a small PMDC-PG-2023 checklist, an extra template, two
// institutions, modules and an assignment.
func (fb *FakeBackend) SeedPMDC() {
	fb.SetModules(
		apiclient.Module{ID: "m1", Code: "PMDC-PG", DisplayName: "PMDC Postgraduate", Description: "Postgraduate accreditation"},
		apiclient.Module{ID: "m2", Code: "PMDC-UG", DisplayName: "PMDC Undergraduate"},
	)
	fb.SetProformas(PMDCTemplate(), apiclient.ProformaTemplate{
		ID: "t2", Code: "HEC-2022", Title: "HEC Program Review", Version: "2022",
	})
	fb.SetInstitutions(
		apiclient.Institution{ID: "inst-a", Name: "King Edward Medical University", City: "Lahore"},
		apiclient.Institution{ID: "inst-b", Name: "Aga Khan University", City: "Karachi"},
	)
	score := 4.0
	fb.SetAssignments(apiclient.Assignment{
		ID: "as1", Template: "t1", TemplateTitle: "PMDC PG Regulations 2023",
		Program: "p1", ProgramName: "FCPS Medicine", Title: "KEMU Medicine 2024", Status: "in_progress",
		ItemStatuses: []apiclient.ItemStatus{
			{ID: "is1", Item: "i1", ItemText: "Hospital has 500 beds", Status: "YES", Comment: "verified", Score: &score},
			{ID: "is2", Item: "i2", ItemText: "Library open 24 hours", Status: "NO"},
		},
	})
}

// PMDCTemplate returns the checklist template used by SeedPMDC.
func PMDCTemplate() apiclient.ProformaTemplate {
	return apiclient.ProformaTemplate{
		ID: "t1", Code: "PMDC-PG-2023", Title: "PMDC PG Regulations 2023", Version: "2023",
		AuthorityName: "PMDC", Description: "Postgraduate regulations checklist", IsActive: true,
		Sections: []apiclient.ProformaSection{
			{
				ID: "s1", Code: "A", Title: "Infrastructure", Order: 1,
				Items: []apiclient.ProformaItem{
					{ID: "i1", Code: "A.1", Text: "Beds", RequirementText: "Hospital has 500 beds", RequiredEvidenceType: "Bed census", Weight: 2, IsLicensingCritical: true},
					{ID: "i2", Code: "A.2", Text: "Library open 24 hours", Weight: 1},
				},
			},
			{
				ID: "s2", Code: "B", Title: "Faculty", Description: "Supervisor requirements", Order: 2,
				Items: []apiclient.ProformaItem{
					{ID: "i3", Code: "B.1", RequirementText: "Two supervisors per program", Weight: 3},
				},
			},
		},
	}
}

func (fb *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&body)
			buf, _ := json.Marshal(body)
			r.Body = io.NopCloser(bytes.NewReader(buf))
		}
		path := strings.TrimPrefix(r.URL.Path, "/api")

		fb.mu.Lock()
		fb.requests = append(fb.requests, RecordedRequest{
			Method: r.Method,
			Path:   path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		status := 0
		for key, code := range fb.failures {
			method, prefix, _ := strings.Cut(key, " ")
			if method == r.Method && strings.HasPrefix(path, prefix) {
				status = code
				break
			}
		}
		fb.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fb.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		next(w, r)
	}
}

func (fb *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad request"})
		return
	}
	fb.mu.Lock()
	pw, ok := fb.users[in.Username]
	fb.mu.Unlock()
	if !ok || pw != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": fb.token, "refresh": "refresh-token"})
}

func (fb *FakeBackend) handleSummary(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	writeJSON(w, http.StatusOK, apiclient.DashboardSummary{Modules: len(fb.modules), Templates: len(fb.proformas)})
}

func (fb *FakeBackend) handleModules(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(fb.modules))
}

func (fb *FakeBackend) handleModule(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, m := range fb.modules {
		if m.ID == r.PathValue("id") {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (fb *FakeBackend) handleProformas(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(fb.proformas))
}

func (fb *FakeBackend) handleProforma(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, p := range fb.proformas {
		if p.ID == r.PathValue("id") {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (fb *FakeBackend) handleAssignments(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(fb.assignments))
}

func (fb *FakeBackend) handleAssignment(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, a := range fb.assignments {
		if a.ID == r.PathValue("id") {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (fb *FakeBackend) handleInstitutions(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(fb.institutions))
}

func (fb *FakeBackend) handleComplianceList(w http.ResponseWriter, r *http.Request) {
	inst := r.URL.Query().Get("institution")
	item := r.URL.Query().Get("item")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []apiclient.Compliance{}
	for _, c := range fb.compliances {
		if inst != "" && c.Institution != inst {
			continue
		}
		if item != "" && c.Item != item {
			continue
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) handleComplianceCreate(w http.ResponseWriter, r *http.Request) {
	var in apiclient.ComplianceCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Item == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, c := range fb.compliances {
		if c.Institution == in.Institution && c.Item == in.Item {
			writeJSON(w, http.StatusBadRequest, map[string][]string{
				"non_field_errors": {"The fields institution, item must make a unique set."},
			})
			return
		}
	}
	fb.seq++
	rec := apiclient.Compliance{
		ID:          fmt.Sprintf("c%d", fb.seq),
		Institution: in.Institution,
		Item:        in.Item,
		Status:      in.Status,
		Comment:     in.Comment,
		EvidenceURL: in.EvidenceURL,
		UpdatedBy:   json.RawMessage("7"),
		UpdatedAt:   "2024-01-01T00:00:00Z",
	}
	fb.compliances = append(fb.compliances, rec)
	writeJSON(w, http.StatusCreated, rec)
}

func (fb *FakeBackend) handleComplianceUpdate(w http.ResponseWriter, r *http.Request) {
	var patch apiclient.CompliancePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.compliances {
		c := &fb.compliances[i]
		if c.ID != r.PathValue("id") {
			continue
		}
		if patch.Status != nil {
			c.Status = *patch.Status
		}
		if patch.Comment != nil {
			c.Comment = *patch.Comment
		}
		if patch.EvidenceURL != nil {
			c.EvidenceURL = *patch.EvidenceURL
		}
		c.UpdatedAt = "2024-01-02T00:00:00Z"
		writeJSON(w, http.StatusOK, *c)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
