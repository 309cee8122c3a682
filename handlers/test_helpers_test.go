package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"accredify/apiclient"
	"accredify/checklist"
	"accredify/session"
	"accredify/testhelpers"
)

const (
	testCookie = "accredify_session"
	testSID    = "sid-test"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

type testEnv struct {
	app  *pocketbase.PocketBase
	fb   *testhelpers.FakeBackend
	deps *Deps
}

// newTestEnv wires handlers to a temp PocketBase and a seeded fake backend.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	app := testhelpers.NewTestApp(t)
	fb := testhelpers.NewFakeBackend(t)
	fb.SeedPMDC()

	return &testEnv{
		app: app,
		fb:  fb,
		deps: &Deps{
			App:       app,
			Client:    apiclient.New(fb.URL(), nil),
			Sessions:  &session.Manager{Store: session.NewStore(app, time.Hour), Cookie: testCookie},
			Checklist: checklist.NewService("PMDC-PG-2023"),
		},
	}
}

// signIn stores a live session holding the fake backend's token.
func (env *testEnv) signIn(t *testing.T) {
	t.Helper()
	testhelpers.CreateTestSession(t, env.app, testSID, env.fb.Token(), time.Now().Add(time.Hour))
}

func (env *testEnv) request(method, target string, form map[string]string, signedIn bool) *http.Request {
	var body io.Reader
	if form != nil {
		vals := url.Values{}
		for k, v := range form {
			vals.Set(k, v)
		}
		body = strings.NewReader(vals.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if signedIn {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: testSID})
	}
	return req
}

func (env *testEnv) serve(t *testing.T, handler func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(env.app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

// withPath sets a path value the router would normally fill in.
func withPath(req *http.Request, name, value string) *http.Request {
	req.SetPathValue(name, value)
	return req
}
