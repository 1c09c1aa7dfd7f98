// Package scope decides whether a file path falls inside the area a guard
// is responsible for.
package scope

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Scope describes a set of file paths by directory markers and file name globs.
// A path is in scope when it satisfies any DirMarkers or NameGlobs entry and,
// when Require is set, also satisfies every Require entry.
type Scope struct {
	// DirMarkers are plain substrings searched for anywhere in the path
	DirMarkers []string

	// NameGlobs are doublestar patterns matched against the base file name
	NameGlobs []string

	// Require are substrings that must all be present in the path
	Require []string
}

// Contains reports whether filePath belongs to the scope
func (s Scope) Contains(filePath string) bool {
	if filePath == "" {
		return false
	}

	for _, marker := range s.Require {
		if !strings.Contains(filePath, marker) {
			return false
		}
	}

	for _, marker := range s.DirMarkers {
		if strings.Contains(filePath, marker) {
			return true
		}
	}

	base := path.Base(strings.ReplaceAll(filePath, `\`, "/"))
	for _, glob := range s.NameGlobs {
		// Patterns are compile-time constants; ErrBadPattern cannot occur here
		if ok, _ := doublestar.Match(glob, base); ok {
			return true
		}
	}

	return false
}

// TestArea matches paths that look like test code: conventional test
// directories or any path mentioning "Test"
var TestArea = Scope{
	DirMarkers: []string{"/Unit/", "/Tests/", "Test"},
}

// TestFiles matches test files by directory convention or filename suffix
// across the .NET, Python and JavaScript/TypeScript ecosystems
var TestFiles = Scope{
	DirMarkers: []string{"/Unit/", "/Tests/", "/Test/"},
	NameGlobs: []string{
		"*Test.cs",
		"*Tests.cs",
		"*_test.py",
		"*_tests.py",
		"*.test.ts",
		"*.test.js",
		"*.spec.ts",
		"*.spec.js",
	},
}

// SourceFiles matches source code files; documentation is excluded
var SourceFiles = Scope{
	NameGlobs: []string{"*.{cs,py,ts,js,tsx,jsx,java,go,rs}"},
}

// DocsMarkdown matches markdown files under a docs directory
var DocsMarkdown = Scope{
	Require:   []string{"/docs/"},
	NameGlobs: []string{"*.md"},
}
