package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockfile pins every package loaded ahead of a Lif entry. It is stored as
// package.lock next to package.yml; Root repeats the manifest name.
type Lockfile struct {
	Path      string           `yaml:"-"`
	Root      string           `yaml:"root"`
	Generated string           `yaml:"generated"`
	Tool      string           `yaml:"tool"`
	Packages  []*LockedPackage `yaml:"packages"`
}

// LockedPackage is one resolved dependency. Dependencies name other locked
// packages, which load first.
type LockedPackage struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Source       string   `yaml:"source"`
	Checksum     string   `yaml:"checksum"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// SourceKind tells where a locked package lives.
type SourceKind int

const (
	// SourcePath is a package directory, relative to the manifest root
	// unless absolute.
	SourcePath SourceKind = iota + 1
	// SourceGit is a commit checked out into the package cache.
	SourceGit
)

// PackageSource is the parsed form of LockedPackage.Source, written as
// "path:<dir>" or "git+<url>@<commit>".
type PackageSource struct {
	Kind   SourceKind
	Dir    string
	URL    string
	Commit string
}

func PathSource(dir string) PackageSource {
	return PackageSource{Kind: SourcePath, Dir: filepath.ToSlash(dir)}
}

func GitSource(url, commit string) PackageSource {
	return PackageSource{Kind: SourceGit, URL: strings.TrimSpace(url), Commit: strings.TrimSpace(commit)}
}

func (s PackageSource) String() string {
	switch s.Kind {
	case SourcePath:
		return "path:" + s.Dir
	case SourceGit:
		return "git+" + s.URL + "@" + s.Commit
	default:
		return ""
	}
}

// ParseSource splits a lockfile source. The commit of a git source follows
// the last '@', so scp-style URLs keep theirs.
func ParseSource(raw string) (PackageSource, error) {
	raw = strings.TrimSpace(raw)
	if dir, ok := strings.CutPrefix(raw, "path:"); ok {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return PackageSource{}, fmt.Errorf("empty path source")
		}
		return PackageSource{Kind: SourcePath, Dir: dir}, nil
	}
	if rest, ok := strings.CutPrefix(raw, "git+"); ok {
		at := strings.LastIndex(rest, "@")
		if at <= 0 || at == len(rest)-1 {
			return PackageSource{}, fmt.Errorf("git source %q has no commit", raw)
		}
		return GitSource(rest[:at], rest[at+1:]), nil
	}
	return PackageSource{}, fmt.Errorf("unsupported source %q", raw)
}

// Origin parses the package's source.
func (p *LockedPackage) Origin() (PackageSource, error) {
	src, err := ParseSource(p.Source)
	if err != nil {
		return PackageSource{}, fmt.Errorf("package %q: %w", p.Name, err)
	}
	return src, nil
}

// NewLockfile starts an empty lockfile for the package named root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Packages:  []*LockedPackage{},
	}
}

// LoadLockfile reads and validates package.lock. A missing file yields an
// error matching os.ErrNotExist.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	lock := &Lockfile{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}
	lock.Path = abs
	lock.normalize()
	if err := lock.validate(); err != nil {
		return nil, fmt.Errorf("lockfile: %s: %w", abs, err)
	}
	return lock, nil
}

// WriteLockfile normalises lock and stores it at path, or at lock.Path when
// path is empty.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		path = lock.Path
	}
	if path == "" {
		return fmt.Errorf("lockfile: missing path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()
	if err := lock.validate(); err != nil {
		return fmt.Errorf("lockfile: %s: %w", abs, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// CheckRoot fails when the lockfile belongs to another package.
func (l *Lockfile) CheckRoot(name string) error {
	if want := sanitizeSegment(name); l.Root != want {
		return fmt.Errorf("lockfile root %q does not match manifest name %q", l.Root, want)
	}
	return nil
}

// Find returns the locked package with the given name.
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeSegment(name)
	for _, pkg := range l.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// Equal reports whether two entries pin the same content.
func (p *LockedPackage) Equal(other *LockedPackage) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name == other.Name &&
		p.Version == other.Version &&
		p.Source == other.Source &&
		p.Checksum == other.Checksum &&
		slices.Equal(p.Dependencies, other.Dependencies)
}

// normalize trims every field, drops nil entries and sorts packages and
// their dependencies by name.
func (l *Lockfile) normalize() {
	l.Root = sanitizeSegment(l.Root)
	l.Generated = strings.TrimSpace(l.Generated)
	l.Tool = strings.TrimSpace(l.Tool)
	l.Packages = slices.DeleteFunc(l.Packages, func(pkg *LockedPackage) bool { return pkg == nil })
	for _, pkg := range l.Packages {
		pkg.Name = sanitizeSegment(pkg.Name)
		pkg.Version = strings.TrimSpace(pkg.Version)
		pkg.Source = strings.TrimSpace(pkg.Source)
		pkg.Checksum = strings.TrimSpace(pkg.Checksum)
		for k, dep := range pkg.Dependencies {
			pkg.Dependencies[k] = sanitizeSegment(dep)
		}
		slices.Sort(pkg.Dependencies)
	}
	slices.SortStableFunc(l.Packages, func(a, b *LockedPackage) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// validate checks that every source parses, names are unique and every
// dependency is itself locked, so the loader can order the packages.
func (l *Lockfile) validate() error {
	seen := make(map[string]bool, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg.Name == "" {
			return fmt.Errorf("package without a name")
		}
		if seen[pkg.Name] {
			return fmt.Errorf("package %q is locked twice", pkg.Name)
		}
		seen[pkg.Name] = true
		if _, err := pkg.Origin(); err != nil {
			return err
		}
	}
	for _, pkg := range l.Packages {
		for _, dep := range pkg.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("package %q depends on %q, which is not locked", pkg.Name, dep)
			}
		}
	}
	return nil
}
