package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/driver"
	"lif/interpreter-go/pkg/interpreter"
	"lif/interpreter-go/pkg/parser"
	"lif/interpreter-go/pkg/runtime"
)

const cliToolVersion = "lif 0.1.0-dev"

var errManifestNotFound = errors.New(driver.ManifestName + " not found")

// Process streams, swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "check":
		return runCheck(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(stderr, "unknown flag %q\n", args[0])
			printUsage()
			return 1
		}
		return runEntry(args)
	}
}

func runEntry(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	var entry string
	var manifest *driver.Manifest
	var err error
	if len(args) == 0 {
		manifest, err = loadManifestFrom(".")
		if err != nil {
			if errors.Is(err, errManifestNotFound) {
				fmt.Fprintf(stderr, "lif run requires a source file (%s not found)\n", driver.ManifestName)
			} else {
				fmt.Fprintf(stderr, "failed to load manifest: %v\n", err)
			}
			return 1
		}
		entry = manifest.MainPath()
	} else {
		entry = args[0]
		manifest, err = loadManifestFrom(entry)
		switch {
		case err == nil:
		case errors.Is(err, errManifestNotFound):
			manifest = nil
		default:
			fmt.Fprintf(stderr, "warning: unable to load manifest (%v); running %s on its own\n", err, entry)
			manifest = nil
		}
	}

	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return executeEntry(entry, manifest, lock)
}

func executeEntry(entry string, manifest *driver.Manifest, lock *driver.Lockfile) int {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		fmt.Fprintln(stderr, "lif run requires a source file")
		return 1
	}

	searchPaths, err := buildExecutionSearchPaths(manifest, lock)
	if err != nil {
		fmt.Fprintf(stderr, "failed to prepare execution environment: %v\n", err)
		return 1
	}
	loader, err := driver.NewLoader(searchPaths)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize loader: %v\n", err)
		return 1
	}
	program, err := loader.Load(entry)
	if err != nil {
		reportLoadError(err)
		return 1
	}

	interp, err := newInterpreter()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	if _, err := interp.RunModules(program.ASTs()); err != nil {
		return exitStatus(err)
	}
	return 0
}

// buildExecutionSearchPaths lists the package roots loaded ahead of the
// entry. The entry's own package only takes part when it has a src directory.
func buildExecutionSearchPaths(manifest *driver.Manifest, lock *driver.Lockfile) ([]driver.SearchPath, error) {
	var paths []driver.SearchPath
	if manifest != nil {
		cacheDir, err := resolveLifHome()
		if err != nil {
			return nil, err
		}
		locked, err := driver.SearchPathsFromLock(lock, manifest.Root(), cacheDir)
		if err != nil {
			return nil, err
		}
		for _, sp := range locked {
			if info, statErr := os.Stat(sp.Path); statErr != nil || !info.IsDir() {
				return nil, fmt.Errorf("dependency %s is not installed at %s; run `lif deps install`", sp.Name, sp.Path)
			}
		}
		paths = append(paths, locked...)
		if info, statErr := os.Stat(filepath.Join(manifest.Root(), "src")); statErr == nil && info.IsDir() {
			paths = append(paths, driver.SearchPath{
				Name:         manifest.Name,
				Path:         manifest.Root(),
				Dependencies: manifest.DependencyNames(),
			})
		}
	}
	paths = append(paths, driver.SearchPathsFromEnv(os.Getenv("LIF_PATH"))...)
	return paths, nil
}

func newInterpreter() (*interpreter.Interpreter, error) {
	threshold, err := gcThreshold()
	if err != nil {
		return nil, err
	}
	return interpreter.New(interpreter.Config{
		Stdout:      stdout,
		Stderr:      stderr,
		Stdin:       stdin,
		GCThreshold: threshold,
		Color:       colorEnabled(stderr),
	}), nil
}

func gcThreshold() (int, error) {
	raw := strings.TrimSpace(os.Getenv("LIF_GC_THRESHOLD"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid LIF_GC_THRESHOLD %q: expected a positive integer", raw)
	}
	return n, nil
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// exitStatus maps an evaluation failure to a process status. Runtime errors
// were already reported by the interpreter.
func exitStatus(err error) int {
	var exit *runtime.Exit
	if errors.As(err, &exit) {
		if exit.Message != "" {
			fmt.Fprintln(stderr, exit.Message)
		}
		return exit.Code
	}
	return 1
}

func reportLoadError(err error) {
	var syntaxErr *parser.SyntaxError
	var loadErr *driver.LoadError
	if errors.As(err, &syntaxErr) && errors.As(err, &loadErr) {
		source, _ := os.ReadFile(loadErr.Path)
		fmt.Fprintln(stderr, describeSyntaxError(loadErr.Path, source, syntaxErr))
		return
	}
	fmt.Fprintf(stderr, "failed to load program: %v\n", err)
}

// describeSyntaxError renders a syntax error with the same layout as runtime
// diagnostics.
func describeSyntaxError(path string, source []byte, syntaxErr *parser.SyntaxError) string {
	loc := interpreter.Location{Path: path, Span: syntaxErr.Span}
	if len(source) > 0 {
		loc.Line = ast.NewSource(path, string(source)).Line(syntaxErr.Span.Start.Line)
	}
	diag := interpreter.RuntimeDiagnostic{Message: syntaxErr.Error(), Location: loc}
	return interpreter.DescribeRuntimeDiagnostic(diag, colorEnabled(stderr))
}

func runCheck(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "lif check requires at least one source file")
		return 1
	}
	status := 0
	for _, path := range args {
		if _, err := driver.LoadEntry(path); err != nil {
			reportLoadError(err)
			status = 1
			continue
		}
		fmt.Fprintf(stdout, "%s: ok\n", path)
	}
	return status
}

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "lif deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(stderr, "lif deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	case "update":
		return runDepsUpdate(args[1:])
	default:
		fmt.Fprintf(stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall() int {
	manifest, cacheDir, ok := depsContext()
	if !ok {
		return 1
	}

	fmt.Fprintf(stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(stdout, "Cache directory: %s\n", cacheDir)

	lock, created, err := openLockfile(manifest)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	installer := newDependencyInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(stdout, line)
	}

	if changed || created {
		action := "Updated"
		if created {
			action = "Created"
		}
		lock.Tool = cliToolVersion
		if err := driver.WriteLockfile(lock, lock.Path); err != nil {
			fmt.Fprintf(stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "%s %s: %s\n", action, driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintf(stdout, "%s already up to date: %s\n", driver.LockfileName, lock.Path)
	}

	fmt.Fprintln(stdout, "Dependencies installed.")
	return 0
}

func runDepsUpdate(targets []string) int {
	manifest, cacheDir, ok := depsContext()
	if !ok {
		return 1
	}

	updateSet := make(map[string]struct{})
	for _, target := range targets {
		if _, declared := manifest.Dependencies[target]; !declared {
			fmt.Fprintf(stderr, "dependency %q not declared in manifest\n", target)
			return 1
		}
		updateSet[target] = struct{}{}
	}

	lock, created, err := openLockfile(manifest)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	installer := newDependencyInstaller(manifest, cacheDir)
	if len(updateSet) == 0 {
		installer.Refresh(manifest.DependencyNames()...)
	} else {
		for name := range updateSet {
			installer.Refresh(name)
		}
	}
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(stderr, "failed to update dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(stdout, line)
	}

	if changed || created {
		lock.Tool = cliToolVersion
		if err := driver.WriteLockfile(lock, lock.Path); err != nil {
			fmt.Fprintf(stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Updated %s: %s\n", driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintln(stdout, "Dependencies already up to date.")
	}
	return 0
}

func depsContext() (*driver.Manifest, string, bool) {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		if errors.Is(err, errManifestNotFound) {
			fmt.Fprintf(stderr, "unable to locate %s: %v\n", driver.ManifestName, err)
		} else {
			fmt.Fprintf(stderr, "failed to read manifest: %v\n", err)
		}
		return nil, "", false
	}
	cacheDir, err := resolveLifHome()
	if err != nil {
		fmt.Fprintf(stderr, "failed to resolve LIF_HOME: %v\n", err)
		return nil, "", false
	}
	return manifest, cacheDir, true
}

// openLockfile reads the lockfile next to manifest, or starts a fresh one.
func openLockfile(manifest *driver.Manifest) (*driver.Lockfile, bool, error) {
	lockPath := filepath.Join(manifest.Root(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	switch {
	case err == nil:
		if err := lock.CheckRoot(manifest.Name); err != nil {
			return nil, false, err
		}
		return lock, false, nil
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lock.Path = lockPath
		return lock, true, nil
	default:
		return nil, false, fmt.Errorf("failed to read lockfile: %w", err)
	}
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := findManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func findManifest(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	path, ok := driver.FindManifest(abs)
	if !ok {
		return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestName, abs, errManifestNotFound)
	}
	return path, nil
}

func resolveLifHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("LIF_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve LIF_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".lif"), nil
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := filepath.Join(manifest.Root(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("%s missing for %q; run `lif deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if err := lock.CheckRoot(manifest.Name); err != nil {
		return nil, err
	}
	return lock, nil
}

func printUsage() {
	fmt.Fprintln(stderr, "Usage:")
	fmt.Fprintln(stderr, "  lif run [file.lif | tree.yml | tree.json]")
	fmt.Fprintln(stderr, "  lif <file.lif>")
	fmt.Fprintln(stderr, "  lif repl")
	fmt.Fprintln(stderr, "  lif check <file.lif> [file.lif ...]")
	fmt.Fprintln(stderr, "  lif deps install")
	fmt.Fprintln(stderr, "  lif deps update [dependency ...]")
	fmt.Fprintln(stderr, "  lif version")
}
