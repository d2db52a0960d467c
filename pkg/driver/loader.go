package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/parser"
)

// SearchPath describes a package root whose .lif files load before the entry.
type SearchPath struct {
	Name         string
	Path         string
	Dependencies []string
}

// Module is one parsed source file.
type Module struct {
	Package string
	Path    string
	AST     *ast.Program
}

// Program contains dependency modules in load order followed by the entry.
type Program struct {
	Entry   *Module
	Modules []*Module
}

// ASTs returns every module tree in evaluation order.
func (p *Program) ASTs() []*ast.Program {
	out := make([]*ast.Program, 0, len(p.Modules))
	for _, mod := range p.Modules {
		out = append(out, mod.AST)
	}
	return out
}

// LoadError ties a parse or decode failure to the file that produced it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loader: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader wires Lif source files into an ordered program.
type Loader struct {
	searchPaths []SearchPath
}

// NewLoader constructs a loader over the given package roots. Duplicate roots
// are dropped; the first occurrence wins.
func NewLoader(searchPaths []SearchPath) (*Loader, error) {
	unique := make([]SearchPath, 0, len(searchPaths))
	seen := make(map[string]struct{}, len(searchPaths))
	for _, sp := range searchPaths {
		if sp.Path == "" {
			continue
		}
		abs, err := filepath.Abs(sp.Path)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search path %q: %w", sp.Path, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		name := sanitizeSegment(sp.Name)
		if name == "" {
			name = sanitizeSegment(filepath.Base(abs))
		}
		unique = append(unique, SearchPath{Name: name, Path: abs, Dependencies: sp.Dependencies})
	}
	return &Loader{searchPaths: unique}, nil
}

// Load parses every search path package, in dependency order, followed by the
// entry file. Entries ending in .yml, .yaml or .json are decoded as syntax
// trees instead of parsed.
func (l *Loader) Load(entry string) (*Program, error) {
	if entry == "" {
		return nil, fmt.Errorf("loader: empty entry path")
	}
	entryPath, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve entry path: %w", err)
	}
	info, err := os.Stat(entryPath)
	if err != nil {
		return nil, fmt.Errorf("loader: stat entry %s: %w", entryPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("loader: entry path %s is a directory", entryPath)
	}

	ordered, err := l.orderPackages()
	if err != nil {
		return nil, err
	}
	program := &Program{}
	for _, sp := range ordered {
		files, err := packageFiles(sp.Path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if file == entryPath {
				continue
			}
			tree, err := parser.ParseFile(file)
			if err != nil {
				return nil, &LoadError{Path: file, Err: err}
			}
			program.Modules = append(program.Modules, &Module{Package: sp.Name, Path: file, AST: tree})
		}
	}

	tree, err := LoadEntry(entryPath)
	if err != nil {
		return nil, err
	}
	program.Entry = &Module{Package: "main", Path: entryPath, AST: tree}
	program.Modules = append(program.Modules, program.Entry)
	return program, nil
}

// LoadEntry reads a single program from path.
func LoadEntry(path string) (*ast.Program, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", path, err)
		}
		tree, err := ast.DecodeTree(data)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		return tree, nil
	default:
		tree, err := parser.ParseFile(path)
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		return tree, nil
	}
}

// orderPackages sorts search paths so that every package follows the
// packages it depends on. Ties keep their original order.
func (l *Loader) orderPackages() ([]SearchPath, error) {
	byName := make(map[string]int, len(l.searchPaths))
	for idx, sp := range l.searchPaths {
		if _, ok := byName[sp.Name]; !ok {
			byName[sp.Name] = idx
		}
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(l.searchPaths))
	ordered := make([]SearchPath, 0, len(l.searchPaths))
	var stack []string

	var visit func(idx int) error
	visit = func(idx int) error {
		sp := l.searchPaths[idx]
		switch state[idx] {
		case done:
			return nil
		case visiting:
			cycle := append(append([]string(nil), stack...), sp.Name)
			return fmt.Errorf("loader: dependency cycle: %s", strings.Join(cycle, " -> "))
		}
		state[idx] = visiting
		stack = append(stack, sp.Name)
		for _, dep := range sp.Dependencies {
			depIdx, ok := byName[sanitizeSegment(dep)]
			if !ok {
				return fmt.Errorf("loader: package %q depends on unknown package %q", sp.Name, dep)
			}
			if err := visit(depIdx); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[idx] = done
		ordered = append(ordered, sp)
		return nil
	}
	for idx := range l.searchPaths {
		if err := visit(idx); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// packageFiles lists the .lif files under a package root in lexical order.
func packageFiles(root string) ([]string, error) {
	dir := sourceDir(root)
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".lif" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: scan %s: %w", dir, err)
	}
	return files, nil
}
