package templates

import "embed"

//go:embed layout pages partials components
var Templates embed.FS
