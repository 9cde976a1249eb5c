// Package web embeds the built frontend assets. Run the frontend build
// before compiling the binary so dist/ holds the production bundle.
package web

import "embed"

//go:embed all:dist
var DistFS embed.FS
