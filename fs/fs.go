package appfs

import "embed"

// FS holds the database migrations and the bundled group data.
//
//go:embed migrations data
var FS embed.FS
