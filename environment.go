// environment.go — the scope chain.
//
// A singly linked chain of frames, innermost first. There is no
// process-wide singleton (the source's parser and evaluator shared one);
// the parser and the evaluator each receive an explicit *Environment
// through their constructors, and cmd/rift wires one shared instance
// through both for a single run so the parser's compile-time
// undeclared/duplicate checks still see exactly the bindings the
// evaluator will have made by that point in the program.
package rift

import "fmt"

type binding struct {
	value   Value
	isConst bool
}

// frame is one lexical scope: a name-to-binding table plus a link to the
// enclosing scope.
type frame struct {
	table  map[string]binding
	parent *frame
}

// Environment is the scope chain. The zero value is not usable; use
// NewEnvironment.
type Environment struct {
	top *frame
}

// NewEnvironment returns an Environment with a single, ever-present
// global frame.
func NewEnvironment() *Environment {
	return &Environment{top: &frame{table: map[string]binding{}}}
}

// PushScope opens a new innermost frame.
func (e *Environment) PushScope() {
	e.top = &frame{table: map[string]binding{}, parent: e.top}
}

// PopScope closes the innermost frame. Popping the global frame is a
// programming error (it is never supposed to happen: Program never
// pushes/pops, only Block, For and Call do at run time and the parser
// does while parsing, each pushing exactly once for every pop) and
// panics rather than silently corrupting the chain.
func (e *Environment) PopScope() {
	if e.top.parent == nil {
		panic("rift: attempted to pop the global scope")
	}
	e.top = e.top.parent
}

// Global returns an Environment rooted at the outermost frame, ignoring
// however many scopes are currently pushed on e. Used by function calls,
// which run against the global frame rather than the caller's local
// scope (functions here capture only their body, not a closure
// environment).
func (e *Environment) Global() *Environment {
	f := e.top
	for f.parent != nil {
		f = f.parent
	}
	return &Environment{top: f}
}

// Get resolves name innermost-first. An unresolved name returns the
// sentinel Nil value together with ok=false; the evaluator turns that
// into an UndefinedVariable diagnostic where the language requires a
// name to already be bound.
func (e *Environment) Get(name string) (Value, bool) {
	for f := e.top; f != nil; f = f.parent {
		if b, ok := f.table[name]; ok {
			return b.value, true
		}
	}
	return Nil, false
}

// IsConst reports whether name currently resolves to a const binding.
// Neither the parser nor the evaluator calls it: ConstReassignment is
// enforced inside SetAssign, which checks the binding's flag itself.
func (e *Environment) IsConst(name string) bool {
	for f := e.top; f != nil; f = f.parent {
		if b, ok := f.table[name]; ok {
			return b.isConst
		}
	}
	return false
}

// DeclaredInCurrentScope reports whether name is bound in the innermost
// frame specifically (not an ancestor). Used by the parser's duplicate
// declaration check, which must only fire on shadowing within the same
// scope, not ordinary shadowing of an outer binding.
func (e *Environment) DeclaredInCurrentScope(name string) bool {
	_, ok := e.top.table[name]
	return ok
}

// SetDeclare binds name in the *current* frame unconditionally,
// shadowing any outer binding of the same name. Used by VarDecl and
// FuncDecl, which always introduce a fresh binding in whatever scope
// they're parsed in.
func (e *Environment) SetDeclare(name string, v Value, isConst bool) {
	e.top.table[name] = binding{value: v, isConst: isConst}
}

// SetAssign walks outward from the current frame to the nearest frame
// that already binds name and mutates it there. It never creates a new
// binding. Returns an error if name is unbound anywhere, or if the
// existing binding is const.
func (e *Environment) SetAssign(name string, v Value) error {
	for f := e.top; f != nil; f = f.parent {
		if b, ok := f.table[name]; ok {
			if b.isConst {
				return &RuntimeError{Kind: ConstReassignment, Msg: fmt.Sprintf("cannot reassign const %q", name)}
			}
			f.table[name] = binding{value: v, isConst: false}
			return nil
		}
	}
	return &RuntimeError{Kind: UndefinedVariable, Msg: fmt.Sprintf("undefined variable %q", name)}
}
