package webui

import (
	"embed"
	"io/fs"
)

// StaticPrefix is the URL prefix embedded assets are served under.
const StaticPrefix = "/static"

//go:embed templates/*.html
var embeddedTemplates embed.FS

//go:embed static/*
var embeddedStatic embed.FS

// TemplatesFS exposes the embedded page templates so callers can copy and
// override them with WithTemplateDir.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// StaticFS exposes the embedded stylesheet served under StaticPrefix.
func StaticFS() fs.FS {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
