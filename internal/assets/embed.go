package assets

import (
	"embed"
)

// Bundle holds the default runtime tree under "bundle/".
//
//go:embed all:bundle
var Bundle embed.FS

// BundleDir is the directory inside Bundle that holds the tree roots.
const BundleDir = "bundle"
