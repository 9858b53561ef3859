package webui

import (
	"embed"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*
var embedFS embed.FS

var (
	catalogTemplates *template.Template
	mapsTemplates    *template.Template
	loginTemplates   *template.Template
)

var funcs = template.FuncMap{
	"money": func(v float64) string {
		return humanize.CommafWithDigits(v, 2)
	},
	"ago": func(t time.Time) string {
		return humanize.Time(t)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"percent": func(v *float64) string {
		if v == nil {
			return ""
		}
		return humanize.FtoaWithDigits(*v, 1) + "%"
	},
}

func init() {
	catalogTemplates = mustParse("templates/base.html", "templates/catalog.html")
	mapsTemplates = mustParse("templates/base.html", "templates/maps.html")
	loginTemplates = mustParse("templates/base.html", "templates/login.html")
}

func mustParse(files ...string) *template.Template {
	t, err := template.New("base.html").Funcs(funcs).ParseFS(embedFS, files...)
	if err != nil {
		panic("Failed to parse templates " + files[len(files)-1] + ": " + err.Error())
	}
	return t
}
