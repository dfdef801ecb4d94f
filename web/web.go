// Package web holds the browser upload widget served at "/".
package web

import "embed"

//go:embed static
var Static embed.FS
