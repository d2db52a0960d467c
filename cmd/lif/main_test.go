package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"lif/interpreter-go/pkg/driver"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// runCLI invokes run with captured streams.
func runCLI(t *testing.T, input string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr, prevIn := stdout, stderr, stdin
	stdout, stderr, stdin = &out, &errOut, strings.NewReader(input)
	defer func() {
		stdout, stderr, stdin = prevOut, prevErr, prevIn
	}()
	code := run(args)
	return code, out.String(), errOut.String()
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	return commitAll(t, repo, dir, "init")
}

func commitAll(t *testing.T, repo *git.Repository, dir, message string) string {
	t.Helper()
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Lif CLI",
			Email: "lif@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestRunVersionAndHelp(t *testing.T) {
	code, out, _ := runCLI(t, "", "--version")
	if code != 0 || strings.TrimSpace(out) != cliToolVersion {
		t.Fatalf("version: code %d output %q", code, out)
	}
	code, _, errOut := runCLI(t, "", "--help")
	if code != 0 || !strings.Contains(errOut, "lif deps install") {
		t.Fatalf("help: code %d output %q", code, errOut)
	}
	code, _, _ = runCLI(t, "")
	if code != 1 {
		t.Fatalf("expected usage failure without arguments, got %d", code)
	}
	code, _, errOut = runCLI(t, "", "--bogus")
	if code != 1 || !strings.Contains(errOut, `unknown flag "--bogus"`) {
		t.Fatalf("unknown flag: code %d output %q", code, errOut)
	}
}

func TestRunSourceFile(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.lif")
	writeFile(t, entry, `
class Greeter {
	static __init__(name) { let g = new(Greeter); g.name = name; return g; }
	greet() { return "hello " + self.name; }
}
print(Greeter("lif").greet());
`)
	for _, args := range [][]string{{"run", entry}, {entry}} {
		code, out, errOut := runCLI(t, "", args...)
		if code != 0 {
			t.Fatalf("%v: exit %d, stderr %q", args, code, errOut)
		}
		if out != "hello lif\n" {
			t.Fatalf("%v: unexpected output %q", args, out)
		}
	}
}

func TestRunExitStatus(t *testing.T) {
	cases := []struct {
		name   string
		source string
		code   int
		stdout string
		stderr string
	}{
		{"success", `print(1 + 1)`, 0, "2\n", ""},
		{"exit", "print(\"before\");\nexit(3);\nprint(\"after\");", 3, "before\n", ""},
		{"assert", `assert(1 == 2)`, 2, "", "assertion failed"},
		{"error", `error("boom")`, 1, "", "boom"},
		{"runtime error", "let a = 1;\nlet b = a / 0;", 1, "", "RUNTIME ERROR: Division by zero."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := filepath.Join(t.TempDir(), "main.lif")
			writeFile(t, entry, tc.source)
			code, out, errOut := runCLI(t, "", entry)
			if code != tc.code {
				t.Fatalf("exit %d, want %d (stderr %q)", code, tc.code, errOut)
			}
			if out != tc.stdout {
				t.Fatalf("stdout %q, want %q", out, tc.stdout)
			}
			if tc.stderr == "" && errOut != "" {
				t.Fatalf("unexpected stderr %q", errOut)
			}
			if !strings.Contains(errOut, tc.stderr) {
				t.Fatalf("stderr %q does not mention %q", errOut, tc.stderr)
			}
		})
	}
}

func TestRunReportsRuntimeLocation(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "main.lif")
	writeFile(t, entry, "let a = 1;\nlet b = a + missing;\n")
	code, _, errOut := runCLI(t, "", entry)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	want := "main.lif:2:13\nlet b = a + missing;\n            ^^^^^^^"
	if !strings.Contains(errOut, want) {
		t.Fatalf("diagnostic %q does not contain %q", errOut, want)
	}
}

func TestRunReportsSyntaxErrors(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "main.lif")
	writeFile(t, entry, "print(1);\nlet = 2;\n")
	code, out, errOut := runCLI(t, "", entry)
	if code != 1 || out != "" {
		t.Fatalf("exit %d output %q", code, out)
	}
	for _, want := range []string{
		"SYNTAX ERROR: Expected an identifier",
		"main.lif:2:5",
		"let = 2;\n    ^",
	} {
		if !strings.Contains(errOut, want) {
			t.Fatalf("diagnostic %q does not contain %q", errOut, want)
		}
	}
}

func TestRunSyntaxTreeEntry(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "tree.yml")
	writeFile(t, entry, `
type: Program
body:
  - type: LetDeclaration
    name: {type: Identifier, name: x}
    value: {type: IntegerLiteral, value: 20}
  - type: FunctionCall
    callee: {type: Identifier, name: print}
    arguments:
      - type: BinaryExpression
        operator: "*"
        left: {type: Identifier, name: x}
        right: {type: IntegerLiteral, value: 2}
`)
	code, out, errOut := runCLI(t, "", "run", entry)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if out != "40\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunManifestMain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, driver.ManifestName), "name: tool\nversion: 1.0.0\n")
	writeFile(t, filepath.Join(dir, "src", "main.lif"), `print(twice(21));`)
	writeFile(t, filepath.Join(dir, "src", "util.lif"), `function twice(n) { return n * 2; }`)
	t.Chdir(dir)
	t.Setenv("LIF_HOME", filepath.Join(dir, ".cache"))

	code, out, errOut := runCLI(t, "", "run")
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if out != "42\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunWithoutManifestOrFile(t *testing.T) {
	t.Chdir(t.TempDir())
	code, _, errOut := runCLI(t, "", "run")
	if code != 1 || !strings.Contains(errOut, "requires a source file") {
		t.Fatalf("exit %d stderr %q", code, errOut)
	}
}

func TestRunRequiresLockfileForDependencies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, driver.ManifestName), "name: app\ndependencies:\n  util: ../util\n")
	writeFile(t, filepath.Join(dir, "main.lif"), `print(1)`)
	code, _, errOut := runCLI(t, "", filepath.Join(dir, "main.lif"))
	if code != 1 || !strings.Contains(errOut, "run `lif deps install`") {
		t.Fatalf("exit %d stderr %q", code, errOut)
	}
}

func TestRunUsesLifPath(t *testing.T) {
	root := t.TempDir()
	lib := filepath.Join(root, "lib")
	writeFile(t, filepath.Join(lib, "square.lif"), `function square(n) { return n * n; }`)
	entry := filepath.Join(root, "app", "main.lif")
	writeFile(t, entry, `print(square(7))`)
	t.Setenv("LIF_PATH", lib)

	code, out, errOut := runCLI(t, "", entry)
	if code != 0 || out != "49\n" {
		t.Fatalf("exit %d output %q stderr %q", code, out, errOut)
	}
}

func TestGCThresholdEnv(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "main.lif")
	writeFile(t, entry, `
let total = 0;
for i in [1, 2, 3, 4, 5, 6, 7, 8] { total += i * i; }
print(total);
`)
	t.Setenv("LIF_GC_THRESHOLD", "4")
	code, out, errOut := runCLI(t, "", entry)
	if code != 0 || out != "204\n" {
		t.Fatalf("exit %d output %q stderr %q", code, out, errOut)
	}

	t.Setenv("LIF_GC_THRESHOLD", "lots")
	code, _, errOut = runCLI(t, "", entry)
	if code != 1 || !strings.Contains(errOut, `invalid LIF_GC_THRESHOLD "lots"`) {
		t.Fatalf("exit %d stderr %q", code, errOut)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.lif")
	bad := filepath.Join(dir, "bad.lif")
	writeFile(t, good, `function f() { 1 }`)
	writeFile(t, bad, `function f( { 1 }`)

	code, out, errOut := runCLI(t, "", "check", good)
	if code != 0 || out != good+": ok\n" {
		t.Fatalf("exit %d output %q stderr %q", code, out, errOut)
	}
	code, out, errOut = runCLI(t, "", "check", good, bad)
	if code != 1 {
		t.Fatalf("expected failure, got %d", code)
	}
	if out != good+": ok\n" || !strings.Contains(errOut, "SYNTAX ERROR") {
		t.Fatalf("output %q stderr %q", out, errOut)
	}
}

func TestReplEvaluatesChunks(t *testing.T) {
	t.Setenv("LIF_HOME", t.TempDir())
	input := strings.Join([]string{
		"let base = 40;",
		"function add(n) {",
		"  return base + n;",
		"}",
		"add(2)",
		"let = ;",
		"missing",
		`error("kept going")`,
		"print(\"still here\")",
		":gc",
		":unknown",
	}, "\n")
	code, out, errOut := runCLI(t, input, "repl")
	if code != 0 {
		t.Fatalf("exit %d stderr %q", code, errOut)
	}
	for _, want := range []string{"40\n", "42\n", "still here\n", "freed ", "unknown command :unknown"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q does not contain %q", out, want)
		}
	}
	for _, want := range []string{"SYNTAX ERROR", "<repl>:1:5", "RUNTIME ERROR", "kept going"} {
		if !strings.Contains(errOut, want) {
			t.Fatalf("stderr %q does not contain %q", errOut, want)
		}
	}
}

func TestReplExit(t *testing.T) {
	code, out, _ := runCLI(t, "print(1)\nexit(5)\nprint(2)\n", "repl")
	if code != 5 {
		t.Fatalf("exit %d, want 5", code)
	}
	if out != "1\n" {
		t.Fatalf("unexpected output %q", out)
	}
	code, out, _ = runCLI(t, "print(1)\n:quit\nprint(2)\n", "repl")
	if code != 0 || out != "1\n" {
		t.Fatalf("quit: exit %d output %q", code, out)
	}
}

func TestResolveLifHome(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cache")
	t.Setenv("LIF_HOME", target)
	got, err := resolveLifHome()
	if err != nil || got != target {
		t.Fatalf("resolveLifHome = %q, %v; want %q", got, err, target)
	}

	home := t.TempDir()
	t.Setenv("LIF_HOME", "")
	t.Setenv("HOME", home)
	got, err = resolveLifHome()
	if err != nil || got != filepath.Join(home, ".lif") {
		t.Fatalf("resolveLifHome default = %q, %v", got, err)
	}
}

func TestFindManifestNotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := findManifest(dir); err == nil || !strings.Contains(err.Error(), "package.yml not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func loadTestManifest(t *testing.T, dir string) *driver.Manifest {
	t.Helper()
	manifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return manifest
}

func TestDependencyInstaller_PathDependencies(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "strings", driver.ManifestName), "name: strings\nversion: 0.4.0\ndependencies:\n  core-lib: ../core\n")
	writeFile(t, filepath.Join(root, "strings", "src", "strings.lif"), `function shout(s) { return s + "!"; }`)
	writeFile(t, filepath.Join(root, "core", "src", "core.lif"), `let core = 1;`)
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), "name: app\ndependencies:\n  strings: ../strings\n")

	manifest := loadTestManifest(t, app)
	installer := newDependencyInstaller(manifest, filepath.Join(root, "cache"))
	lock := driver.NewLockfile(manifest.Name, cliToolVersion)

	changed, logs, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if !changed {
		t.Fatalf("expected the lockfile to change")
	}
	if len(logs) != 2 {
		t.Fatalf("unexpected logs %v", logs)
	}
	if len(lock.Packages) != 2 {
		t.Fatalf("unexpected packages %#v", lock.Packages)
	}
	core, strs := lock.Packages[0], lock.Packages[1]
	if core.Name != "core_lib" || core.Source != "path:../core" || core.Version != "0.0.0" {
		t.Fatalf("unexpected core package %#v", core)
	}
	if strs.Name != "strings" || strs.Version != "0.4.0" || strs.Source != "path:../strings" {
		t.Fatalf("unexpected strings package %#v", strs)
	}
	if len(strs.Dependencies) != 1 || strs.Dependencies[0] != "core_lib" {
		t.Fatalf("strings dependencies = %v", strs.Dependencies)
	}
	if !strings.HasPrefix(strs.Checksum, "sha256:") {
		t.Fatalf("checksum = %q", strs.Checksum)
	}

	changed, _, err = newDependencyInstaller(manifest, filepath.Join(root, "cache")).Install(lock)
	if err != nil || changed {
		t.Fatalf("second install: changed %v err %v", changed, err)
	}

	writeFile(t, filepath.Join(root, "core", "src", "core.lif"), `let core = 2;`)
	changed, _, err = newDependencyInstaller(manifest, filepath.Join(root, "cache")).Install(lock)
	if err != nil || !changed {
		t.Fatalf("edited dependency: changed %v err %v", changed, err)
	}
}

func TestDependencyInstaller_Cycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", driver.ManifestName), "name: a\ndependencies:\n  b: ../b\n")
	writeFile(t, filepath.Join(root, "b", driver.ManifestName), "name: b\ndependencies:\n  a: ../a\n")
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), "name: app\ndependencies:\n  a: ../a\n")

	manifest := loadTestManifest(t, app)
	_, _, err := newDependencyInstaller(manifest, "").Install(driver.NewLockfile("app", cliToolVersion))
	if err == nil || err.Error() != "dependency cycle: a -> b -> a" {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestDependencyInstaller_MissingPath(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), "name: app\ndependencies:\n  ghost: ../ghost\n")
	manifest := loadTestManifest(t, app)
	_, _, err := newDependencyInstaller(manifest, "").Install(driver.NewLockfile("app", cliToolVersion))
	if err == nil || !strings.Contains(err.Error(), "dependency ghost") {
		t.Fatalf("expected missing path error, got %v", err)
	}
}

func TestDependencyInstaller_GitDependency(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, driver.ManifestName), "name: gitpkg\nversion: 0.2.0\n")
	writeFile(t, filepath.Join(repo, "src", "core.lif"), `function value() { return "git"; }`)
	rev := initGitRepo(t, repo)

	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), fmt.Sprintf("name: app\ndependencies:\n  gitpkg:\n    git: %s\n    rev: %s\n", repo, rev))
	manifest := loadTestManifest(t, app)

	cacheDir := filepath.Join(root, "cache")
	lock := driver.NewLockfile(manifest.Name, cliToolVersion)
	changed, _, err := newDependencyInstaller(manifest, cacheDir).Install(lock)
	if err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if !changed || len(lock.Packages) != 1 {
		t.Fatalf("unexpected lock packages %#v", lock.Packages)
	}
	pkg := lock.Packages[0]
	if want := fmt.Sprintf("git+%s@%s", repo, rev); pkg.Source != want {
		t.Fatalf("pkg.Source = %q, want %q", pkg.Source, want)
	}
	if pkg.Version != rev {
		t.Fatalf("pkg.Version = %q, want %q", pkg.Version, rev)
	}
	cached := driver.PackageDir(cacheDir, pkg.Name, pkg.Version)
	if _, err := os.Stat(filepath.Join(cached, "src", "core.lif")); err != nil {
		t.Fatalf("expected cached git package at %s: %v", cached, err)
	}
	resolved, err := driver.ResolveSource(pkg, manifest.Root(), cacheDir)
	if err != nil || resolved != cached {
		t.Fatalf("ResolveSource = %q, %v; want %q", resolved, err, cached)
	}
}

func TestDependencyInstaller_GitBranchPinsUntilRefresh(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, "src", "core.lif"), `function value() { return "one"; }`)
	first := initGitRepo(t, repoDir)

	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), fmt.Sprintf("name: app\ndependencies:\n  gitpkg:\n    git: %s\n    branch: master\n", repoDir))
	manifest := loadTestManifest(t, app)
	cacheDir := filepath.Join(root, "cache")

	lock := driver.NewLockfile(manifest.Name, cliToolVersion)
	if _, _, err := newDependencyInstaller(manifest, cacheDir).Install(lock); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if got := lock.Packages[0].Version; got != "master@"+first {
		t.Fatalf("Version = %q, want master@%s", got, first)
	}

	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		t.Fatalf("PlainOpen: %v", err)
	}
	writeFile(t, filepath.Join(repoDir, "src", "core.lif"), `function value() { return "two"; }`)
	second := commitAll(t, repo, repoDir, "second")

	changed, _, err := newDependencyInstaller(manifest, cacheDir).Install(lock)
	if err != nil {
		t.Fatalf("reinstall error: %v", err)
	}
	if changed || lock.Packages[0].Version != "master@"+first {
		t.Fatalf("expected the locked commit to hold, got %q", lock.Packages[0].Version)
	}

	installer := newDependencyInstaller(manifest, cacheDir)
	installer.Refresh("gitpkg")
	changed, _, err = installer.Install(lock)
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if !changed || lock.Packages[0].Version != "master@"+second {
		t.Fatalf("expected master@%s after refresh, got %q", second, lock.Packages[0].Version)
	}
}

func TestDepsInstallThenRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "greet", "src", "greet.lif"), `function greet(name) { return "hi " + name; }`)
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, driver.ManifestName), "name: app\nmain: main.lif\ndependencies:\n  greet: ../greet\n")
	writeFile(t, filepath.Join(app, "main.lif"), `print(greet("there"))`)
	t.Setenv("LIF_HOME", filepath.Join(root, "home"))
	t.Chdir(app)

	code, out, errOut := runCLI(t, "", "deps", "install")
	if code != 0 {
		t.Fatalf("deps install: exit %d stderr %q", code, errOut)
	}
	if !strings.Contains(out, "Created package.lock") || !strings.Contains(out, "Resolved greet (path:../greet)") {
		t.Fatalf("unexpected install output %q", out)
	}
	lock, err := driver.LoadLockfile(filepath.Join(app, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if lock.Tool != cliToolVersion || len(lock.Packages) != 1 {
		t.Fatalf("unexpected lockfile %#v", lock)
	}

	code, out, _ = runCLI(t, "", "deps", "install")
	if code != 0 || !strings.Contains(out, "package.lock already up to date") {
		t.Fatalf("second install: exit %d output %q", code, out)
	}

	code, out, errOut = runCLI(t, "", "run")
	if code != 0 || out != "hi there\n" {
		t.Fatalf("run: exit %d output %q stderr %q", code, out, errOut)
	}

	code, out, errOut = runCLI(t, "", "deps", "update", "greet")
	if code != 0 || !strings.Contains(out, "Dependencies already up to date.") {
		t.Fatalf("update: exit %d output %q stderr %q", code, out, errOut)
	}
	code, _, errOut = runCLI(t, "", "deps", "update", "ghost")
	if code != 1 || !strings.Contains(errOut, `dependency "ghost" not declared`) {
		t.Fatalf("update unknown: exit %d stderr %q", code, errOut)
	}
}

func TestDepsSubcommandErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"deps"}, "requires a subcommand"},
		{[]string{"deps", "frobnicate"}, `unknown deps subcommand "frobnicate"`},
		{[]string{"deps", "install", "extra"}, "does not take arguments"},
		{[]string{"deps", "install"}, "unable to locate package.yml"},
	}
	for _, tc := range cases {
		code, _, errOut := runCLI(t, "", tc.args...)
		if code != 1 || !strings.Contains(errOut, tc.want) {
			t.Fatalf("%v: exit %d stderr %q", tc.args, code, errOut)
		}
	}
}
