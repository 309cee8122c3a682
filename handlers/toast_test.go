package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func parseToast(t *testing.T, header string) map[string]string {
	t.Helper()
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(header), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	raw, ok := parsed["showToast"]
	if !ok {
		t.Fatal("expected showToast key in HX-Trigger JSON")
	}
	var toast map[string]string
	if err := json.Unmarshal(raw, &toast); err != nil {
		t.Fatalf("showToast value is not valid JSON: %v", err)
	}
	return toast
}

func TestSetToast_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	SetToast(e, "success", "Status saved")

	toast := parseToast(t, rec.Header().Get("HX-Trigger"))
	if toast["message"] != "Status saved" || toast["type"] != "success" {
		t.Errorf("unexpected toast %v", toast)
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", `{"itemSaved":{"id":"i1"}}`)

	SetToast(e, "info", "Merged")

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	if _, ok := parsed["itemSaved"]; !ok {
		t.Error("expected itemSaved to be preserved")
	}
	if toast := parseToast(t, rec.Header().Get("HX-Trigger")); toast["message"] != "Merged" {
		t.Errorf("expected merged toast, got %v", toast)
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, "error", "Overwritten")

	if toast := parseToast(t, rec.Header().Get("HX-Trigger")); toast["message"] != "Overwritten" {
		t.Errorf("expected toast after overwrite, got %v", toast)
	}
}

func TestSetToast_SpecialCharacters(t *testing.T) {
	for _, msg := range []string{`Item "A.1" saved`, `<script>alert("x")</script>`, "line1\nline2", "Saved ✔"} {
		rec := httptest.NewRecorder()
		e := &core.RequestEvent{}
		e.Response = rec

		SetToast(e, "info", msg)

		if toast := parseToast(t, rec.Header().Get("HX-Trigger")); toast["message"] != msg {
			t.Errorf("expected message %q, got %q", msg, toast["message"])
		}
	}
}

func TestSetToast_FlashCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	SetToast(e, "success", "Signed out")

	var flash *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie {
			flash = c
		}
	}
	if flash == nil {
		t.Fatal("expected flash cookie")
	}
	raw, err := url.QueryUnescape(flash.Value)
	if err != nil {
		t.Fatalf("flash cookie not query-escaped: %v", err)
	}
	var toast map[string]string
	if err := json.Unmarshal([]byte(raw), &toast); err != nil {
		t.Fatalf("flash cookie is not JSON: %v", err)
	}
	if toast["message"] != "Signed out" {
		t.Errorf("unexpected flash toast %v", toast)
	}
}

func TestErrorToast_SetsHeaderAndReswap(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec

	if err := ErrorToast(e, http.StatusBadGateway, statusUpdateFailed); err != nil {
		t.Fatalf("ErrorToast returned error: %v", err)
	}

	toast := parseToast(t, rec.Header().Get("HX-Trigger"))
	if toast["type"] != "error" || toast["message"] != statusUpdateFailed {
		t.Errorf("unexpected toast %v", toast)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Errorf("expected HX-Reswap none, got %q", rec.Header().Get("HX-Reswap"))
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	if rec.Body.String() != statusUpdateFailed {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
