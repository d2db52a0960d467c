package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"lif/interpreter-go/pkg/driver"
)

var commitHashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// dirChecksum hashes the relative path and contents of every file below path,
// skipping version control metadata.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch checks out spec into the package cache. A non-empty pin is the
// commit recorded by a previous install and wins over a moving tag or branch.
func (g *gitFetcher) Fetch(name string, spec *driver.DependencySpec, pin string) (*driver.LockedPackage, string, error) {
	if g == nil {
		return nil, "", errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, "", fmt.Errorf("dependency %q: git URL required", name)
	}

	baseDir := filepath.Dir(driver.PackageDir(g.cacheDir, name, "head"))
	version, commit, err := ensureGitCheckout(baseDir, url, spec, pin)
	if err != nil {
		return nil, "", err
	}

	checkoutDir := driver.PackageDir(g.cacheDir, name, version)
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", err
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  version,
		Source:   driver.GitSource(url, commit).String(),
		Checksum: checksum,
	}, checkoutDir, nil
}

func ensureGitCheckout(baseDir, url string, spec *driver.DependencySpec, pin string) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}
	if pin != "" {
		revision = plumbing.Revision(pin)
	}

	// A full commit hash fixes the checkout directory before cloning.
	if known := string(revision); commitHashPattern.MatchString(known) {
		existing := filepath.Join(baseDir, driver.PathSegment(gitPinnedVersion(descriptor, known)))
		if _, err := os.Stat(existing); err == nil {
			return gitPinnedVersion(descriptor, known), known, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
		Tags:              git.AllTags,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := resolveRevision(repo, revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, driver.PathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

// resolveRevision also accepts branches that only exist as remote-tracking
// refs after a clone.
func resolveRevision(repo *git.Repository, revision plumbing.Revision) (*plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(revision)
	if err == nil {
		return hash, nil
	}
	if branch, ok := strings.CutPrefix(string(revision), "refs/heads/"); ok {
		if remote, remoteErr := repo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + branch)); remoteErr == nil {
			return remote, nil
		}
	}
	return nil, err
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *driver.DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag or branch")
}

// lockedCommit returns the commit pinned for pkg when it was checked out
// from url.
func lockedCommit(pkg *driver.LockedPackage, url string) string {
	if pkg == nil {
		return ""
	}
	src, err := pkg.Origin()
	if err != nil || src.Kind != driver.SourceGit || src.URL != strings.TrimSpace(url) {
		return ""
	}
	if !commitHashPattern.MatchString(src.Commit) {
		return ""
	}
	return src.Commit
}
