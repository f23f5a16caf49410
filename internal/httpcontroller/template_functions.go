package httpcontroller

import (
	"html/template"
	"net/url"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

// templateFunctions returns the helpers available to every view.
func templateFunctions() template.FuncMap {
	return template.FuncMap{
		"title":      cases.Title(language.English).String,
		"formatTime": formatTime,
		"checkLabel": checkLabel,
		"isAbnormal": func(s entities.FinalStatus) bool { return s == entities.FinalStatusAbnormal },
		"isResolved": func(s entities.AdminStatus) bool { return s == entities.AdminStatusResolved },
		"scriptHTML": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec // sanitized on save
		"pathEscape": url.PathEscape,
		"add":        func(a, b int) int { return a + b },
		"flashClass": flashClass,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func checkLabel(ok bool) string {
	if ok {
		return string(entities.FinalStatusNormal)
	}
	return string(entities.FinalStatusAbnormal)
}

func flashClass(category string) string {
	switch category {
	case flashSuccess:
		return "flash-success"
	case flashError:
		return "flash-error"
	default:
		return "flash-info"
	}
}
