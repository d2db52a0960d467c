package ast

import (
	"reflect"
	"strings"
)

// Source is the text a tree was parsed from. Diagnostics use it to print the
// offending line.
type Source struct {
	Name string
	Text string

	lines []string
}

func NewSource(name, text string) *Source {
	return &Source{Name: name, Text: text}
}

// Line returns the 1-based line without its terminator, or "" when out of range.
func (s *Source) Line(n int) string {
	if s == nil {
		return ""
	}
	if s.lines == nil {
		s.lines = strings.Split(strings.ReplaceAll(s.Text, "\r\n", "\n"), "\n")
	}
	if n < 1 || n > len(s.lines) {
		return ""
	}
	return s.lines[n-1]
}

// AnnotateOrigins assigns the provided source to every node reachable from root.
// Nodes already present in table keep their first origin.
func AnnotateOrigins(root Node, source *Source, table map[Node]*Source) {
	if root == nil || source == nil || table == nil {
		return
	}
	annotateOrigins(root, source, table, make(map[Node]struct{}))
}

func annotateOrigins(node Node, source *Source, table map[Node]*Source, visited map[Node]struct{}) {
	if node == nil {
		return
	}
	if _, ok := visited[node]; ok {
		return
	}
	visited[node] = struct{}{}
	if _, ok := table[node]; !ok {
		table[node] = source
	}
	val := reflect.ValueOf(node)
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return
		}
		annotateValue(val.Elem(), source, table, visited)
		return
	}
	annotateValue(val, source, table, visited)
}

func annotateValue(val reflect.Value, source *Source, table map[Node]*Source, visited map[Node]struct{}) {
	if !val.IsValid() {
		return
	}
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return
		}
		if val.CanInterface() {
			if node, ok := val.Interface().(Node); ok {
				annotateOrigins(node, source, table, visited)
				return
			}
		}
		annotateValue(val.Elem(), source, table, visited)
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if !val.Type().Field(i).IsExported() {
				continue
			}
			annotateValue(val.Field(i), source, table, visited)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			annotateValue(val.Index(i), source, table, visited)
		}
	}
}
