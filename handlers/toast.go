package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"
)

const flashCookie = "flash_toast"

type toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SetToast adds a showToast event to the HX-Trigger header, keeping any
// events already there. A short-lived flash cookie carries the same toast
// across plain redirects, where HX-Trigger is lost.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	t := toast{Message: message, Type: toastType}

	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			zap.L().Warn("toast: existing HX-Trigger is not valid JSON, overwriting", zap.Error(err))
			events = map[string]any{}
		}
	}
	events["showToast"] = t

	data, err := json.Marshal(events)
	if err != nil {
		zap.L().Error("toast: failed to marshal HX-Trigger JSON", zap.Error(err))
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	flash, err := json.Marshal(t)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(string(flash)),
		Path:     "/",
		MaxAge:   10,
		SameSite: http.SameSiteLaxMode,
	})
}

// ErrorToast sends an error toast and tells htmx not to swap the response,
// so whatever the page showed before stays in place.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
