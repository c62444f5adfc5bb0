package web

import "embed"

// TemplatesFS embeds the page and the plan fragment.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds stylesheet and script.
//
//go:embed static/*
var StaticFS embed.FS
