// Package web holds the embedded page and email templates.
package web

import (
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates
var files embed.FS

// Page template names.
const (
	PageHome          = "home.html"
	PageServices      = "services.html"
	PageServiceDetail = "service_detail.html"
	PageAbout         = "about.html"
	PageCareers       = "careers.html"
	PageJobDetail     = "job_detail.html"
	PageContact       = "contact.html"
	PageNotFound      = "not_found.html"
	PageError         = "error.html"
)

// Email template base names; each has an .html and a .txt variant.
const EmailApplicationConfirmation = "job_application_confirmation"

var pageFuncs = htmltemplate.FuncMap{
	"year": func() int { return time.Now().Year() },
	"lines": func(s string) []string {
		var out []string
		for _, l := range strings.Split(s, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
		return out
	},
}

// Pages parses every page template together with the shared layout.
func Pages() (*htmltemplate.Template, error) {
	return htmltemplate.New("pages").Funcs(pageFuncs).ParseFS(files, "templates/pages/*.html")
}

// EmailHTML parses the HTML email templates.
func EmailHTML() (*htmltemplate.Template, error) {
	return htmltemplate.New("email").ParseFS(files, "templates/email/*.html")
}

// EmailText parses the plain-text email templates.
func EmailText() (*texttemplate.Template, error) {
	return texttemplate.New("email").ParseFS(files, "templates/email/*.txt")
}
