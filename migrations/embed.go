// Package migrations embeds the SQL migrations so the binaries can run them
// without the source tree.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
