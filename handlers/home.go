package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"accredify/templates"
)

func HandleHome(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return render(e, http.StatusOK, templates.HomeContent(), templates.HomePage(GetNavData(e.Request)))
	}
}
