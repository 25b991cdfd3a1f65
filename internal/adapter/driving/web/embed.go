package web

import "embed"

// StaticFS holds the embedded stylesheet and toggle script.
//
//go:embed static/*
var StaticFS embed.FS
