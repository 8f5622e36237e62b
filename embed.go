package folio

import "embed"

// EmbeddedAssets contains static assets shipped with folio: style.css and
// newsletter.js. Both are served and built under /public/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
