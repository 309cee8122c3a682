package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"accredify/apiclient"
	"accredify/session"
	"accredify/templates"
)

type contextKey string

const HolderKey contextKey = "sessionHolder"
const NavDataKey contextKey = "navData"

// GetHolder returns the request's session holder. Requests that did not pass
// through SessionMiddleware get a fresh holder read from the cookie.
func (d *Deps) GetHolder(r *http.Request) *session.Holder {
	if h, ok := r.Context().Value(HolderKey).(*session.Holder); ok {
		return h
	}
	return d.Sessions.Holder(r)
}

// GetNavData extracts the pre-built NavData from the request context.
func GetNavData(r *http.Request) templates.NavData {
	if val, ok := r.Context().Value(NavDataKey).(templates.NavData); ok {
		return val
	}
	return templates.NavData{ActivePath: r.URL.Path}
}

// clientFor returns the backend client authorised as the request's session.
func (d *Deps) clientFor(e *core.RequestEvent) *apiclient.Client {
	return d.Client.WithTokens(d.GetHolder(e.Request))
}

// SessionMiddleware resolves the session cookie into a holder and builds the
// nav bar data, storing both in the request context.
func SessionMiddleware(d *Deps) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		holder := d.Sessions.Holder(e.Request)

		nav := templates.NavData{ActivePath: e.Request.URL.Path}
		if holder.ID() != "" {
			sess, err := holder.Load()
			switch {
			case err == nil:
				nav.SignedIn = true
				nav.Username = sess.Username
			case errors.Is(err, session.ErrNotFound):
				d.Sessions.ClearCookie(e.Response)
			default:
				zap.L().Warn("middleware: session lookup failed", zap.Error(err))
			}
		}

		ctx := context.WithValue(e.Request.Context(), HolderKey, holder)
		ctx = context.WithValue(ctx, NavDataKey, nav)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}

// RequireSession sends requests without a live session to the login page
// before any backend call is made.
func RequireSession(d *Deps) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := d.GetHolder(e.Request).Load(); err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				zap.L().Warn("middleware: session lookup failed", zap.Error(err))
			}
			return redirect(e, "/login")
		}
		return e.Next()
	}
}

// isPartial reports whether the request wants only the #content fragment.
// Boosted navigation swaps the whole body and so gets the full page.
func isPartial(r *http.Request) bool {
	return isHTMX(r) && r.Header.Get("HX-Boosted") != "true"
}

func redirect(e *core.RequestEvent, url string) error {
	if isHTMX(e.Request) {
		e.Response.Header().Set("HX-Redirect", url)
		return e.String(http.StatusOK, "")
	}
	return e.Redirect(http.StatusFound, url)
}

// isHTMX reports whether htmx sent the request, boosted navigation included.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render writes partial for fragment requests and full otherwise. htmx does
// not swap 4xx or 5xx responses, so anything htmx asked for, boosted page
// loads included, is sent with 200 and the status only applies to plain
// browser requests.
func render(e *core.RequestEvent, status int, partial, full templ.Component) error {
	component := full
	if isPartial(e.Request) {
		component = partial
	}
	if isHTMX(e.Request) {
		status = http.StatusOK
	}
	e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	e.Response.WriteHeader(status)
	return component.Render(e.Request.Context(), e.Response)
}

// statusFor maps a read outcome to the page's HTTP status.
func statusFor(s apiclient.State) int {
	switch s {
	case apiclient.NotFound:
		return http.StatusNotFound
	case apiclient.Failed:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
