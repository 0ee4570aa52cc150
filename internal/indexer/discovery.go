package indexer

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/semantic/internal/syntax"
)

// ErrNoIncludePatterns is returned when discovery has nothing to match files against.
var ErrNoIncludePatterns = errors.New("no include patterns")

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// SourceFile is one discovered file.
type SourceFile struct {
	Path     string // absolute or as walked
	RelPath  string // slash separated, relative to the root
	Language syntax.Language
	Size     int64
	ModTime  time.Time
}

// FileDiscovery finds source files under a root by include and ignore globs, keeping
// only files whose extension maps to an enabled language.
type FileDiscovery struct {
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
	languages      map[syntax.Language]bool
}

// NewFileDiscovery compiles the patterns. An empty languages list enables every
// language.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string, languages []syntax.Language) (*FileDiscovery, error) {
	if len(includePatterns) == 0 {
		return nil, ErrNoIncludePatterns
	}
	fd := &FileDiscovery{
		rootDir:   rootDir,
		languages: map[syntax.Language]bool{},
	}

	var err error
	if fd.includes, err = compileAll(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compileAll(ignorePatterns); err != nil {
		return nil, err
	}
	for _, l := range languages {
		fd.languages[l] = true
	}
	return fd, nil
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// DiscoverFiles walks the directory tree and returns matching files sorted by
// relative path.
func (fd *FileDiscovery) DiscoverFiles() ([]SourceFile, error) {
	files := []SourceFile{}

	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}
		if fd.shouldIgnore(relPath) || !fd.matchesAnyPattern(relPath, fd.includes) {
			return nil
		}

		lang, ok := syntax.LanguageForPath(relPath)
		if !ok || (len(fd.languages) > 0 && !fd.languages[lang]) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, SourceFile{
			Path:     path,
			RelPath:  relPath,
			Language: lang,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, err
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	// The project's own state directory is never source.
	if strings.HasPrefix(relPath, ".semantic/") || relPath == ".semantic" {
		return true
	}

	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// "**/*.rs" also matches "main.rs" at the root.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
