// Package ui embeds the templates and static assets so the binary can be
// deployed without carrying the source tree along.
package ui

import "embed"

//go:embed templates static
var Files embed.FS
