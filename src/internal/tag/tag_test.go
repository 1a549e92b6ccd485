// FILE: src/internal/tag/tag_test.go
package tag

import (
	"testing"

	"logfunnel/src/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestShorten(t *testing.T) {
	testCases := []struct {
		name     string
		origin   core.Origin
		path     string
		basePath string
		expected string
	}{
		{
			name:     "FrontendDevServerURL",
			origin:   core.OriginFrontend,
			path:     "http://localhost:3000/app/main.js",
			expected: "Frontend: app/main.js",
		},
		{
			name:     "FrontendDevServerURLWithSrcSegment",
			origin:   core.OriginFrontend,
			path:     "http://localhost:3000/src/ui/button.ts",
			expected: "Frontend: ui/button.ts",
		},
		{
			name:     "FrontendFileScheme",
			origin:   core.OriginFrontend,
			path:     "file:///opt/app/renderer/index.js",
			expected: "Frontend: /opt/app/renderer/index.js",
		},
		{
			name:     "FrontendNoRecognizablePrefix",
			origin:   core.OriginFrontend,
			path:     "renderer/index.js",
			expected: "Frontend: renderer/index.js",
		},
		{
			name:     "BackendFileScheme",
			origin:   core.OriginBackend,
			path:     "file:///opt/app/main/index.js",
			expected: "Backend : /opt/app/main/index.js",
		},
		{
			name:     "BackendBasePathStripped",
			origin:   core.OriginBackend,
			path:     "/opt/app/main/index.js",
			basePath: "/opt/app",
			expected: "Backend : main/index.js",
		},
		{
			name:     "BackendFileSchemeThenBasePath",
			origin:   core.OriginBackend,
			path:     "file:///opt/app/main/index.js",
			basePath: "/opt/app",
			expected: "Backend : main/index.js",
		},
		{
			name:     "BackendSrcSegment",
			origin:   core.OriginBackend,
			path:     "/opt/app/src/main/window.js",
			expected: "Backend : main/window.js",
		},
		{
			name:     "LastSrcSegmentWins",
			origin:   core.OriginBackend,
			path:     "/home/dev/src/app/src/main/window.js",
			expected: "Backend : main/window.js",
		},
		{
			name:     "SrcInsideWordNotASegment",
			origin:   core.OriginBackend,
			path:     "/opt/mysrc/main.js",
			expected: "Backend : /opt/mysrc/main.js",
		},
		{
			name:     "BackendUnrelatedBasePathLeftAlone",
			origin:   core.OriginBackend,
			path:     "/other/place/main.js",
			basePath: "/opt/app",
			expected: "Backend : /other/place/main.js",
		},
		{
			name:     "FrontendSchemeWithPort",
			origin:   core.OriginFrontend,
			path:     "https://127.0.0.1:8443/assets/index.js",
			expected: "Frontend: assets/index.js",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Shorten(tc.origin, tc.path, tc.basePath))
		})
	}
}

func TestShortenDoesNotMutateInput(t *testing.T) {
	path := "http://localhost:3000/src/ui/button.ts"
	_ = Shorten(core.OriginFrontend, path, "")
	assert.Equal(t, "http://localhost:3000/src/ui/button.ts", path)
}
