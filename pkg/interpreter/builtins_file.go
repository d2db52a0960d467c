package interpreter

import (
	"os"

	"lif/interpreter-go/pkg/runtime"
)

func (i *Interpreter) installFile() {
	p := &i.primitives

	i.static(p.File, "read", func(args []*runtime.Value) (*runtime.Reference, error) {
		path, _ := args[0].AsString()
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, runtime.NewError("Cannot read the file %q: %v.", path, err)
		}
		return i.constant(i.newString(string(data)))
	}, p.String)

	i.static(p.File, "write", func(args []*runtime.Value) (*runtime.Reference, error) {
		path, _ := args[0].AsString()
		content, err := i.stringify(args[1])
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, runtime.NewError("Cannot write the file %q: %v.", path, err)
		}
		return i.undefined, nil
	}, p.String, nil)
}
