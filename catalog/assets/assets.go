// Package assets bundles the default reference data shipped with the app.
package assets

import "embed"

// FS holds pricing.json, instrument-list.json and portfolio.json.
//
//go:embed *.json
var FS embed.FS
