// Package templates holds the console's views. Markup lives in html/*.html
// and is exposed to handlers as templ components.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"accredify/apiclient"
)

//go:embed html/*.html
var files embed.FS

var views = template.Must(template.New("views").Funcs(template.FuncMap{
	"statusLabel": StatusLabel,
	"score":       formatScore,
	"orDash":      orDash,
	"percent":     func(f float64) string { return fmt.Sprintf("%.0f%%", f) },
	"isLoaded":    func(s apiclient.State) bool { return s == apiclient.Loaded },
	"isEmpty":     func(s apiclient.State) bool { return s == apiclient.Empty },
	"isNotFound":  func(s apiclient.State) bool { return s == apiclient.NotFound },
	"isFailed":    func(s apiclient.State) bool { return s == apiclient.Failed },
}).ParseFS(files, "html/*.html"))

func view(name string, data any) templ.Component {
	t := views.Lookup(name)
	if t == nil {
		panic("templates: unknown view " + name)
	}
	return templ.FromGoHTML(t, data)
}

// Page wraps content in the full document layout.
func Page(title string, nav NavData, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := LayoutData{Title: title, Nav: nav}
		if err := view("layout_head", head).Render(ctx, w); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		return view("layout_tail", head).Render(ctx, w)
	})
}

// StatusLabel is the human label of a compliance status.
func StatusLabel(status string) string { return apiclient.StatusLabel(status) }

func formatScore(s *float64) string {
	if s == nil {
		return "-"
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", *s), "0"), ".")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
