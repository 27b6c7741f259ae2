package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/gobwas/glob"

	"github.com/yaklabco/spanedit/pkg/fsutil"
)

// Discover finds the files selected by opts. It returns a sorted,
// de-duplicated list of absolute paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	f, err := newFilter(workDir, opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(workDir, absPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}

		if !info.IsDir() {
			// Named files skip the extension and vendor filters but still
			// honour ignore globs.
			if !f.excluded(absPath) {
				add(absPath)
			}
			continue
		}

		found, err := f.walk(ctx, absPath)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			add(path)
		}
	}

	slices.Sort(files)
	return files, nil
}

// Selector returns the predicate a directory walk with opts applies to
// each file. It lets callers vet files that appear after discovery.
func Selector(opts Options) (func(path string) bool, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	f, err := newFilter(workDir, opts)
	if err != nil {
		return nil, err
	}
	return f.accepts, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// filter holds the compiled selection criteria for one discovery.
type filter struct {
	workDir    string
	extensions []string
	excludes   []glob.Glob
	opts       Options
}

func newFilter(workDir string, opts Options) (*filter, error) {
	f := &filter{workDir: workDir, opts: opts}

	for _, ext := range opts.Extensions {
		ext = strings.ToLower(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions = append(f.extensions, ext)
	}

	for _, pattern := range opts.ExcludeGlobs {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		f.excludes = append(f.excludes, g)
	}

	return f, nil
}

// rel returns path relative to the working directory, slash-separated.
func (f *filter) rel(path string) string {
	relPath, err := filepath.Rel(f.workDir, path)
	if err != nil {
		relPath = path
	}
	return filepath.ToSlash(relPath)
}

// excluded reports whether path matches an ignore glob, either as a whole
// relative path or by base name.
func (f *filter) excluded(path string) bool {
	relPath := f.rel(path)
	base := filepath.Base(path)
	for _, g := range f.excludes {
		if g.Match(relPath) || g.Match(base) {
			return true
		}
	}
	return false
}

func (f *filter) vendored(path string, dir bool) bool {
	if f.opts.IncludeVendored {
		return false
	}
	relPath := f.rel(path)
	if dir {
		relPath += "/"
	}
	return enry.IsVendor(relPath)
}

func (f *filter) hasExtension(path string) bool {
	if len(f.extensions) == 0 {
		return true
	}
	return slices.Contains(f.extensions, strings.ToLower(filepath.Ext(path)))
}

// accepts applies every file-level criterion to a walked file.
func (f *filter) accepts(path string) bool {
	name := filepath.Base(path)
	switch {
	case strings.HasPrefix(name, "."):
		return false
	case strings.HasSuffix(name, fsutil.BackupSuffix):
		return false
	case !f.hasExtension(path):
		return false
	case f.excluded(path):
		return false
	case f.vendored(path, false):
		return false
	}
	return true
}

func (f *filter) walk(ctx context.Context, root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		if entry.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(entry.Name(), ".") || f.excluded(path) || f.vendored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				// Broken or inaccessible symlink.
				return nil //nolint:nilerr // skipped on purpose
			}
			if target.IsDir() {
				if !f.opts.FollowSymlinks || f.excluded(path) {
					return nil
				}
				realPath, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil //nolint:nilerr // skipped on purpose
				}
				sub, err := f.walk(ctx, realPath)
				if err != nil {
					return err
				}
				files = append(files, sub...)
				return nil
			}
		}

		if f.accepts(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	return files, nil
}
