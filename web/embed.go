// Package web embeds the HTML templates and browser assets of the admin
// pages.
package web

import "embed"

//go:embed templates/*.html
var TemplateFiles embed.FS

//go:embed static
var StaticFiles embed.FS
