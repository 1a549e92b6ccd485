// FILE: src/internal/tag/tag.go
// Package tag rewrites raw call-site paths into short, origin-prefixed
// display paths. Pure string heuristics, no filesystem access.
package tag

import (
	"regexp"
	"strings"

	"logfunnel/src/internal/core"
)

// Exact display prefixes, including the aligning space after "Backend"
const (
	BackendPrefix  = "Backend : "
	FrontendPrefix = "Frontend: "
)

const fileScheme = "file://"

// Matches a leading scheme://host[:port]/ segment, e.g. the dev-server
// URL a frontend bundle is served from
var schemeHost = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://[^/]*/`)

// Shorten produces the display form of a call-site path: origin prefix
// plus a shortened path. Paths with no recognizable prefix come back
// unchanged apart from the origin label.
func Shorten(origin core.Origin, path, basePath string) string {
	p := path

	switch origin {
	case core.OriginFrontend:
		if strings.HasPrefix(p, fileScheme) {
			p = p[len(fileScheme):]
		} else if m := schemeHost.FindString(p); m != "" {
			p = p[len(m):]
		}
	case core.OriginBackend:
		p = strings.TrimPrefix(p, fileScheme)
		if basePath != "" && strings.HasPrefix(p, basePath) {
			p = strings.TrimPrefix(p[len(basePath):], "/")
		}
	}

	p = afterSrcSegment(p)

	if origin == core.OriginFrontend {
		return FrontendPrefix + p
	}
	return BackendPrefix + p
}

// afterSrcSegment keeps only the portion after the last "src/" path
// segment, if any
func afterSrcSegment(p string) string {
	i := strings.LastIndex(p, "src/")
	for i > 0 && p[i-1] != '/' && p[i-1] != '\\' {
		i = strings.LastIndex(p[:i], "src/")
	}
	if i < 0 {
		return p
	}
	return p[i+len("src/"):]
}
