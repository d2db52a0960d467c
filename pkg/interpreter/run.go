package interpreter

import (
	"errors"
	"fmt"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/runtime"
)

// Run evaluates program and returns the reference it produced. A runtime
// error is reported on the error sink and returned; exit requests are
// returned without a report.
func (i *Interpreter) Run(program *ast.Program) (*runtime.Reference, error) {
	if program.Source != nil {
		ast.AnnotateOrigins(program, program.Source, i.origins)
	}
	i.registries = i.registries[:1]
	i.registries[0].reset()
	i.calls = i.calls[:0]

	out, err := i.Execute(program)
	if err != nil {
		var exit *runtime.Exit
		if !errors.As(err, &exit) {
			fmt.Fprintln(i.stderr, i.DescribeError(err))
		}
		return nil, err
	}
	return out.Ref, nil
}

// RunModules evaluates programs in order in the same top-level scope and
// stops at the first failure.
func (i *Interpreter) RunModules(programs []*ast.Program) (*runtime.Reference, error) {
	result := i.undefined
	for _, program := range programs {
		ref, err := i.Run(program)
		if err != nil {
			return nil, err
		}
		result = ref
	}
	return result, nil
}
