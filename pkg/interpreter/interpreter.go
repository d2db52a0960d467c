package interpreter

import (
	"bufio"
	"io"
	"os"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/runtime"
)

// Config carries the host collaborators of an Interpreter. Zero values fall
// back to the process streams and the default collection threshold.
type Config struct {
	Stdout      io.Writer
	Stderr      io.Writer
	Stdin       io.Reader
	GCThreshold int
	Color       bool
}

// Primitives holds the builtin classes created at bootstrap.
type Primitives struct {
	Array    *runtime.Value
	Boolean  *runtime.Value
	Class    *runtime.Value
	File     *runtime.Value
	Function *runtime.Value
	Generic  *runtime.Value
	Integer  *runtime.Value
	Method   *runtime.Value
	Object   *runtime.Value
	String   *runtime.Value
}

func (p *Primitives) all() []*runtime.Value {
	return []*runtime.Value{p.Array, p.Boolean, p.Class, p.File, p.Function, p.Generic, p.Integer, p.Method, p.Object, p.String}
}

// Interpreter drives evaluation of Lif syntax trees against a garbage
// collected heap.
type Interpreter struct {
	heap       *runtime.Heap
	primitives Primitives
	global     *runtime.Scope
	scope      *runtime.Scope
	frames     []*runtime.Scope
	registries []*registry
	pinned     []*runtime.Value
	undefined  *runtime.Reference
	calls      []ast.Node
	origins    map[ast.Node]*ast.Source
	rendering  map[*runtime.Value]struct{}

	stdout io.Writer
	stderr io.Writer
	stdin  *bufio.Reader
	color  bool
}

// New returns an interpreter with the builtin classes and functions installed
// in its global scope.
func New(cfg Config) *Interpreter {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	i := &Interpreter{
		heap:       runtime.NewHeap(cfg.GCThreshold),
		registries: []*registry{{}},
		origins:    make(map[ast.Node]*ast.Source),
		stdout:     cfg.Stdout,
		stderr:     cfg.Stderr,
		stdin:      bufio.NewReader(cfg.Stdin),
		color:      cfg.Color,
	}
	i.undefined = i.heap.NewConstant(nil)
	i.undefined.Seal()
	i.global = i.bootstrap()
	i.scope = i.newScope(i.global)
	i.registries[0].reset()
	return i
}

// Heap exposes the allocator, mostly for tests and the REPL's statistics.
func (i *Interpreter) Heap() *runtime.Heap {
	return i.heap
}

// Global returns the scope holding the builtin bindings.
func (i *Interpreter) Global() *runtime.Scope {
	return i.global
}

// Scope returns the current scope; top-level declarations land here.
func (i *Interpreter) Scope() *runtime.Scope {
	return i.scope
}

func (i *Interpreter) Primitives() Primitives {
	return i.primitives
}

// Undefined is the shared empty reference returned by expressions that
// produce nothing.
func (i *Interpreter) Undefined() *runtime.Reference {
	return i.undefined
}
