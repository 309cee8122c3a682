package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"accredify/templates"
)

const loginFailed = "Login failed."

var validate = validator.New(validator.WithRequiredStructEnabled())

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// HandleLoginPage renders the empty login form.
func HandleLoginPage(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := templates.LoginData{}
		return render(e, http.StatusOK, templates.LoginContent(data), templates.LoginPage(data, GetNavData(e.Request)))
	}
}

// HandleLogin exchanges the submitted credentials for a backend token. Only
// a successful login with an access token starts a session; every failure
// re-renders the form with nothing persisted.
func HandleLogin(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		form := loginForm{
			Username: strings.TrimSpace(e.Request.FormValue("username")),
			Password: e.Request.FormValue("password"),
		}

		fail := func(msg string) error {
			data := templates.LoginData{Username: form.Username, Message: msg, Failed: true}
			return render(e, http.StatusUnauthorized, templates.LoginContent(data), templates.LoginPage(data, GetNavData(e.Request)))
		}

		if err := validate.Struct(form); err != nil {
			return fail("Username and password are required.")
		}

		resp, err := d.Client.Login(e.Request.Context(), form.Username, form.Password)
		if err != nil {
			zap.L().Info("login: backend rejected login", zap.String("username", form.Username), zap.Error(err))
			return fail(loginFailed)
		}
		if resp.Access == "" {
			zap.L().Warn("login: response carried no access token", zap.String("username", form.Username))
			return fail(loginFailed)
		}

		holder := d.GetHolder(e.Request)
		sess, err := holder.Set(form.Username, resp.Access)
		if err != nil {
			zap.L().Error("login: could not store session", zap.Error(err))
			return fail(loginFailed)
		}
		d.Sessions.WriteCookie(e.Response, sess)

		return redirect(e, "/dashboard")
	}
}

// HandleLogout drops the session and its cookie. The backend has no logout
// call; the token is simply forgotten.
func HandleLogout(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := d.GetHolder(e.Request).Clear(); err != nil {
			zap.L().Warn("logout: could not delete session", zap.Error(err))
		}
		d.Sessions.ClearCookie(e.Response)
		return redirect(e, "/login")
	}
}
