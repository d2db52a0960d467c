package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}

// PathSegment maps an arbitrary version string to a safe directory name.
func PathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// PackageDir is where a fetched package version lives inside the cache.
func PackageDir(cacheDir, name, version string) string {
	return filepath.Join(cacheDir, "pkg", "src", sanitizeSegment(name), PathSegment(version))
}

// ResolveSource returns the directory holding a locked package.
func ResolveSource(pkg *LockedPackage, manifestRoot, cacheDir string) (string, error) {
	if pkg == nil {
		return "", fmt.Errorf("loader: nil package")
	}
	src, err := pkg.Origin()
	if err != nil {
		return "", fmt.Errorf("loader: %w", err)
	}
	switch src.Kind {
	case SourceGit:
		if cacheDir == "" {
			return "", fmt.Errorf("loader: package %q needs a cache directory", pkg.Name)
		}
		return PackageDir(cacheDir, pkg.Name, pkg.Version), nil
	default:
		if filepath.IsAbs(src.Dir) {
			return filepath.Clean(src.Dir), nil
		}
		return filepath.Join(manifestRoot, filepath.FromSlash(src.Dir)), nil
	}
}

// SearchPathsFromLock lists the locked packages as loader roots.
func SearchPathsFromLock(lock *Lockfile, manifestRoot, cacheDir string) ([]SearchPath, error) {
	if lock == nil {
		return nil, nil
	}
	paths := make([]SearchPath, 0, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg == nil {
			continue
		}
		dir, err := ResolveSource(pkg, manifestRoot, cacheDir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, SearchPath{
			Name:         pkg.Name,
			Path:         dir,
			Dependencies: append([]string(nil), pkg.Dependencies...),
		})
	}
	return paths, nil
}

// SearchPathsFromEnv splits a LIF_PATH style list into roots named after their
// directories.
func SearchPathsFromEnv(value string) []SearchPath {
	var paths []SearchPath
	for _, entry := range filepath.SplitList(value) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		paths = append(paths, SearchPath{Name: sanitizeSegment(filepath.Base(entry)), Path: entry})
	}
	return paths
}

// sourceDir prefers <root>/src when it exists.
func sourceDir(root string) string {
	src := filepath.Join(root, "src")
	if info, err := os.Stat(src); err == nil && info.IsDir() {
		return src
	}
	return root
}
