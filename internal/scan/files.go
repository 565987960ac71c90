package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// skipDirs is the fixed ignore list applied on every walk, before any
// .gitignore or caller excludes.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"vendor":       true,
}

// languageByExt is the extension census table. Extensions outside it
// still reach the aggregator (manifests, raw-text detectors) but do
// not count toward the language census.
var languageByExt = map[string]string{
	".py":  "Python",
	".go":  "Go",
	".rs":  "Rust",
	".ts":  "TypeScript",
	".tsx": "TypeScript",
	".js":  "JavaScript",
	".jsx": "JavaScript",
}

// CollectOptions tunes the file walk.
type CollectOptions struct {
	// UseGitignore layers the tree's root .gitignore on top of the
	// fixed skip list.
	UseGitignore bool

	// Excludes are extra caller-supplied rel-path prefixes to drop.
	Excludes []string
}

// CollectSources walks the tree once and reads every source file the
// analyzers may care about. Keys are slash-separated rel paths, sorted
// iteration is up to the caller. Unreadable files are logged by the
// caller contract: here they are simply skipped.
func CollectSources(root string, opts CollectOptions) (map[string][]byte, error) {
	var matcher *ignore.GitIgnore
	if opts.UseGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = gi
		}
	}

	sources := make(map[string][]byte)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A missing root is fatal; unreadable entries below it are
			// skipped.
			if d == nil {
				return err
			}
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if skipDirs[d.Name()] || excluded(rel, opts.Excludes) {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if excluded(rel, opts.Excludes) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		sources[rel] = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return sources, nil
}

func excluded(rel string, excludes []string) bool {
	for _, prefix := range excludes {
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}
	return false
}

// LanguageCensus counts files per recognized language and names the
// most common one. Ties break lexicographically so the census is
// deterministic.
func LanguageCensus(sources map[string][]byte) (map[string]int, string) {
	census := make(map[string]int)
	for path := range sources {
		if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
			census[lang]++
		}
	}

	names := make([]string, 0, len(census))
	for name := range census {
		names = append(names, name)
	}
	sort.Strings(names)

	primary := ""
	best := 0
	for _, name := range names {
		if census[name] > best {
			best = census[name]
			primary = name
		}
	}
	return census, primary
}
