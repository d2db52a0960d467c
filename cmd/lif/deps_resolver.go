package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lif/interpreter-go/pkg/driver"
)

// dependencyInstaller resolves the manifest's dependencies transitively and
// rewrites the lockfile's package list to match.
type dependencyInstaller struct {
	manifest     *driver.Manifest
	manifestRoot string
	git          *gitFetcher
	pins         map[string]*driver.LockedPackage
	refresh      map[string]bool
	resolved     map[string]*driver.LockedPackage
	stack        []string
	logs         []string
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{
		manifest:     manifest,
		manifestRoot: manifest.Root(),
		git:          newGitFetcher(cacheDir),
		refresh:      make(map[string]bool),
	}
}

// Refresh drops the locked commit of the named dependencies so the next
// Install re-resolves their tag or branch.
func (d *dependencyInstaller) Refresh(names ...string) {
	for _, name := range names {
		d.refresh[lockName(name)] = true
	}
}

// Install resolves every dependency and stores the result in lock. It
// reports whether the package list changed along with progress messages.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if lock == nil {
		return false, nil, errors.New("lockfile is nil")
	}
	d.pins = make(map[string]*driver.LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil && !d.refresh[pkg.Name] {
			d.pins[pkg.Name] = pkg
		}
	}
	d.resolved = make(map[string]*driver.LockedPackage)
	d.stack = nil
	d.logs = nil

	for _, name := range d.manifest.DependencyNames() {
		if err := d.installDependency(name, d.manifest.Dependencies[name].Clone(), d.manifestRoot); err != nil {
			return false, d.logs, err
		}
	}

	desired := make([]*driver.LockedPackage, 0, len(d.resolved))
	for _, pkg := range d.resolved {
		desired = append(desired, pkg)
	}
	sort.Slice(desired, func(a, b int) bool { return desired[a].Name < desired[b].Name })

	changed := len(desired) != len(lock.Packages)
	if !changed {
		for idx, pkg := range desired {
			if !pkg.Equal(lock.Packages[idx]) {
				changed = true
				break
			}
		}
	}
	lock.Packages = desired
	return changed, d.logs, nil
}

func (d *dependencyInstaller) installDependency(name string, spec *driver.DependencySpec, base string) error {
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	key := lockName(name)
	if _, done := d.resolved[key]; done {
		return nil
	}
	for idx, active := range d.stack {
		if active == key {
			cycle := append(append([]string(nil), d.stack[idx:]...), key)
			return fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> "))
		}
	}
	d.stack = append(d.stack, key)
	defer func() { d.stack = d.stack[:len(d.stack)-1] }()

	pkg, root, err := d.resolveDependency(key, spec, base)
	if err != nil {
		return err
	}

	child, err := loadChildManifest(root)
	if err != nil {
		return fmt.Errorf("dependency %s: %w", key, err)
	}
	if child != nil {
		if pkg.Version == "" {
			pkg.Version = child.Version
		}
		for _, childName := range child.DependencyNames() {
			if err := d.installDependency(childName, child.Dependencies[childName].Clone(), root); err != nil {
				return err
			}
			pkg.Dependencies = append(pkg.Dependencies, lockName(childName))
		}
		sort.Strings(pkg.Dependencies)
	}
	if pkg.Version == "" {
		pkg.Version = "0.0.0"
	}

	d.resolved[key] = pkg
	return nil
}

func (d *dependencyInstaller) resolveDependency(name string, spec *driver.DependencySpec, base string) (*driver.LockedPackage, string, error) {
	switch {
	case spec.Path != "":
		return d.resolvePathDependency(name, spec, base)
	case spec.Git != "":
		pin := ""
		if !d.refresh[name] {
			pin = lockedCommit(d.pins[name], spec.Git)
		}
		pkg, dir, err := d.git.Fetch(name, spec, pin)
		if err != nil {
			return nil, "", fmt.Errorf("dependency %s: %w", name, err)
		}
		d.logf("Fetched %s %s (%s)", name, pkg.Version, pkg.Source)
		return pkg, dir, nil
	default:
		return nil, "", fmt.Errorf("dependency %q: unsupported descriptor", name)
	}
}

func (d *dependencyInstaller) resolvePathDependency(name string, spec *driver.DependencySpec, base string) (*driver.LockedPackage, string, error) {
	dir := filepath.FromSlash(spec.Path)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("dependency %s: %s is not a directory", name, dir)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %s: checksum: %w", name, err)
	}
	src := driver.PathSource(d.displayPath(dir))
	d.logf("Resolved %s (%s)", name, src)
	return &driver.LockedPackage{
		Name:     name,
		Source:   src.String(),
		Checksum: checksum,
	}, dir, nil
}

// displayPath is path relative to the manifest when that stays portable.
func (d *dependencyInstaller) displayPath(path string) string {
	if rel, err := filepath.Rel(d.manifestRoot, path); err == nil && !filepath.IsAbs(rel) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

func (d *dependencyInstaller) logf(format string, args ...any) {
	d.logs = append(d.logs, fmt.Sprintf(format, args...))
}

func loadChildManifest(root string) (*driver.Manifest, error) {
	path := filepath.Join(root, driver.ManifestName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(path)
}

// lockName matches the normalisation the lockfile applies to names.
func lockName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}
