// eval.go — the tree-walking evaluator.
//
// One dispatch function per AST node family, walking the Environment
// chain and tagging every intermediate result with a Value. `return`
// is not a panic/recover sentinel but a distinct value threaded
// alongside normal results (ReturnSignal, Outcome below), and function
// calls run against the interpreter's global frame rather than an
// environment snapshot captured at definition time.
package rift

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// ReturnSignal carries a `return` statement's value up through the
// statement evaluators until Call catches it. It is never treated as an
// error and never escapes Call; a ReturnSignal reaching Program level is
// reported as a StructuralError instead.
type ReturnSignal struct{ Value Value }

// Outcome is what evaluating a Stmt/Decl produces: the ordered list of
// per-statement result values it contributed (a simple statement or
// declaration contributes exactly one; a Block, loop or if contributes
// however many of its parts ran, flattened, which may be none), plus a
// non-nil Return if a `return` escaped
// from somewhere inside it.
type Outcome struct {
	Values []Value
	Return *ReturnSignal
}

// Interpreter evaluates a Program against a shared Environment. Print
// output goes to Out (defaults to os.Stdout; tests inject a buffer).
type Interpreter struct {
	env *Environment
	Out io.Writer
}

// NewInterpreter builds an Interpreter over env. env should be the same
// instance a Parser consulted while building the Program passed to Run.
func NewInterpreter(env *Environment) *Interpreter {
	return &Interpreter{env: env, Out: os.Stdout}
}

// Run evaluates prog and returns the rendered result strings, one per
// value the top-level declarations contributed (a loop or block
// contributes one per nested result), in evaluation order.
func (in *Interpreter) Run(prog *Program) ([]string, error) {
	var values []Value
	for _, d := range prog.Decls {
		out, err := in.evalDecl(d, in.env)
		if err != nil {
			return nil, err
		}
		if out.Return != nil {
			return nil, &RuntimeError{Kind: StructuralError, Msg: "return outside of a function body"}
		}
		values = append(values, out.Values...)
	}
	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = Render(v)
	}
	return rendered, nil
}

// ---- declarations & statements ----

func (in *Interpreter) evalDecl(d Decl, env *Environment) (Outcome, error) {
	switch n := d.(type) {
	case *VarDecl:
		return in.evalVarDecl(n, env)
	case *FuncDecl:
		return in.evalFuncDecl(n, env)
	case Stmt:
		return in.evalStmt(n, env)
	default:
		return Outcome{}, fmt.Errorf("rift: unhandled declaration node %T", d)
	}
}

func (in *Interpreter) evalVarDecl(d *VarDecl, env *Environment) (Outcome, error) {
	v := Nil
	if d.Init != nil {
		val, err := in.evalExpr(d.Init, env)
		if err != nil {
			return Outcome{}, err
		}
		v = val
	}
	env.SetDeclare(d.Name.Lexeme, v, d.IsConst)
	return Outcome{Values: []Value{v}}, nil
}

func (in *Interpreter) evalFuncDecl(d *FuncDecl, env *Environment) (Outcome, error) {
	if existing, ok := env.Get(d.Name.Lexeme); ok && existing.Kind != KNil {
		return Outcome{}, &RuntimeError{Kind: DuplicateDeclaration, Line: d.Name.Line,
			Msg: "duplicate declaration of " + d.Name.Lexeme}
	}
	fn := &Function{Name: d.Name.Lexeme, Params: d.Params, Body: d.Body}
	fv := FunctionVal(fn)
	env.SetDeclare(d.Name.Lexeme, fv, false)
	return Outcome{Values: []Value{fv}}, nil
}

func (in *Interpreter) evalStmt(s Stmt, env *Environment) (Outcome, error) {
	switch n := s.(type) {
	case *ExprStmt:
		v, err := in.evalExpr(n.Expr, env)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Values: []Value{v}}, nil

	case *PrintStmt:
		v, err := in.evalExpr(n.Expr, env)
		if err != nil {
			return Outcome{}, err
		}
		fmt.Fprintln(in.Out, Render(v))
		return Outcome{Values: []Value{v}}, nil

	case *ReturnStmt:
		v := Nil
		if n.Value != nil {
			val, err := in.evalExpr(n.Value, env)
			if err != nil {
				return Outcome{}, err
			}
			v = val
		}
		return Outcome{Values: []Value{v}, Return: &ReturnSignal{Value: v}}, nil

	case *IfStmt:
		return in.evalIfStmt(n, env)

	case *WhileStmt:
		return in.evalWhileStmt(n, env)

	case *ForStmt:
		return in.evalForStmt(n, env)

	case *Block:
		return in.evalBlock(n, env)

	default:
		return Outcome{}, fmt.Errorf("rift: unhandled statement node %T", s)
	}
}

func (in *Interpreter) evalBlock(b *Block, env *Environment) (Outcome, error) {
	env.PushScope()
	defer env.PopScope()
	return in.evalDeclsSequential(b.Decls, env)
}

// evalDeclsSequential evaluates decls in order against env (no scope
// push/pop of its own — callers that need a fresh scope push it first),
// flattening each child's contributed Values and stopping as soon as one
// of them produces a Return.
func (in *Interpreter) evalDeclsSequential(decls []Decl, env *Environment) (Outcome, error) {
	var out Outcome
	for _, d := range decls {
		o, err := in.evalDecl(d, env)
		if err != nil {
			return Outcome{}, err
		}
		out.Values = append(out.Values, o.Values...)
		if o.Return != nil {
			out.Return = o.Return
			return out, nil
		}
	}
	return out, nil
}

func (in *Interpreter) evalIfStmt(n *IfStmt, env *Environment) (Outcome, error) {
	for _, branch := range n.Branches {
		if branch.Body == nil {
			return Outcome{}, &RuntimeError{Kind: StructuralError, Msg: "if/elif branch has neither a block nor a statement"}
		}
		cond, err := in.evalExpr(branch.Cond, env)
		if err != nil {
			return Outcome{}, err
		}
		if cond.Truthy() {
			return in.evalDecl(branch.Body, env)
		}
	}
	if n.Else != nil {
		return in.evalDecl(n.Else, env)
	}
	return Outcome{}, nil
}

func (in *Interpreter) evalWhileStmt(n *WhileStmt, env *Environment) (Outcome, error) {
	var out Outcome
	for {
		cond, err := in.evalExpr(n.Cond, env)
		if err != nil {
			return Outcome{}, err
		}
		if !cond.Truthy() {
			break
		}
		o, err := in.evalDecl(n.Body, env)
		if err != nil {
			return Outcome{}, err
		}
		out.Values = append(out.Values, o.Values...) // appended in iteration order
		if o.Return != nil {
			out.Return = o.Return
			return out, nil
		}
	}
	return out, nil
}

func (in *Interpreter) evalForStmt(n *ForStmt, env *Environment) (Outcome, error) {
	env.PushScope()
	defer env.PopScope()

	if n.Init != nil {
		if _, err := in.evalDecl(n.Init, env); err != nil {
			return Outcome{}, err
		}
	}

	var out Outcome
	for {
		if n.Cond != nil {
			cond, err := in.evalExpr(n.Cond, env)
			if err != nil {
				return Outcome{}, err
			}
			if !cond.Truthy() {
				break
			}
		}
		o, err := in.evalDecl(n.Body, env)
		if err != nil {
			return Outcome{}, err
		}
		out.Values = append(out.Values, o.Values...) // appended in iteration order
		if o.Return != nil {
			out.Return = o.Return
			return out, nil
		}
		if n.Post != nil {
			if _, err := in.evalExpr(n.Post, env); err != nil {
				return Outcome{}, err
			}
		}
	}
	return out, nil
}

// ---- expressions ----

func (in *Interpreter) evalExpr(e Expr, env *Environment) (Value, error) {
	switch n := e.(type) {
	case *Literal:
		return in.evalLiteral(n, env)
	case *Unary:
		return in.evalUnary(n, env)
	case *Binary:
		return in.evalBinary(n, env)
	case *Grouping:
		return in.evalExpr(n.Expr, env)
	case *Assign:
		return in.evalAssign(n, env)
	case *Ternary:
		return in.evalTernary(n, env)
	case *Call:
		return in.evalCall(n, env)
	default:
		return Nil, fmt.Errorf("rift: unhandled expression node %T", e)
	}
}

func (in *Interpreter) evalLiteral(n *Literal, env *Environment) (Value, error) {
	tok := n.Value
	switch tok.Type {
	case NIL:
		return Nil, nil
	case TRUE:
		return BoolVal(true), nil
	case FALSE:
		return BoolVal(false), nil
	case NUMBER:
		return NumberVal(tok.Literal.(float64)), nil
	case STRING:
		return StringVal(tok.Literal.(string)), nil
	case IDENTIFIER, CONST_IDENTIFIER:
		v, ok := env.Get(tok.Lexeme)
		if !ok {
			return Nil, &RuntimeError{Kind: UndefinedVariable, Line: tok.Line, Msg: "undefined variable " + tok.Lexeme}
		}
		return v, nil
	default:
		return Nil, fmt.Errorf("rift: unhandled literal token %s", tok.Type)
	}
}

func (in *Interpreter) evalUnary(n *Unary, env *Environment) (Value, error) {
	v, err := in.evalExpr(n.Expr, env)
	if err != nil {
		return Nil, err
	}
	switch n.Op.Type {
	case MINUS:
		if v.Kind != KNumber {
			return Nil, &RuntimeError{Kind: TypeMismatch, Line: n.Op.Line, Msg: "unary '-' requires a number"}
		}
		return NumberVal(-v.N), nil
	case BANG:
		switch v.Kind {
		case KBool:
			return BoolVal(!v.B), nil
		case KNumber:
			return BoolVal(v.N == 0), nil
		case KString:
			return BoolVal(v.S == ""), nil
		default:
			return Nil, &RuntimeError{Kind: TypeMismatch, Line: n.Op.Line, Msg: "unary '!' does not accept " + v.Kind.String()}
		}
	default:
		return Nil, fmt.Errorf("rift: unhandled unary operator %s", n.Op.Type)
	}
}

func (in *Interpreter) evalBinary(n *Binary, env *Environment) (Value, error) {
	switch n.Op.Type {
	case AND:
		left, err := in.evalExpr(n.Left, env)
		if err != nil {
			return Nil, err
		}
		if !left.Truthy() {
			return BoolVal(false), nil
		}
		right, err := in.evalExpr(n.Right, env)
		if err != nil {
			return Nil, err
		}
		return BoolVal(right.Truthy()), nil

	case OR:
		left, err := in.evalExpr(n.Left, env)
		if err != nil {
			return Nil, err
		}
		if left.Truthy() {
			return BoolVal(true), nil
		}
		right, err := in.evalExpr(n.Right, env)
		if err != nil {
			return Nil, err
		}
		return BoolVal(right.Truthy()), nil

	case NULLISH:
		left, err := in.evalExpr(n.Left, env)
		if err != nil {
			return Nil, err
		}
		if left.Kind != KNil {
			return left, nil
		}
		return in.evalExpr(n.Right, env)
	}

	left, err := in.evalExpr(n.Left, env)
	if err != nil {
		return Nil, err
	}
	right, err := in.evalExpr(n.Right, env)
	if err != nil {
		return Nil, err
	}

	switch n.Op.Type {
	case PLUS:
		return addValues(left, right, n.Op.Line)
	case MINUS:
		return arith(left, right, n.Op.Line, "-", func(a, b float64) float64 { return a - b })
	case STAR:
		return arith(left, right, n.Op.Line, "*", func(a, b float64) float64 { return a * b })
	case SLASH:
		return arith(left, right, n.Op.Line, "/", func(a, b float64) float64 { return a / b })
	case EQUAL_EQUAL:
		return BoolVal(Render(left) == Render(right)), nil
	case BANG_EQUAL:
		return BoolVal(Render(left) != Render(right)), nil
	case LESS:
		return BoolVal(Render(left) < Render(right)), nil
	case LESS_EQUAL:
		return BoolVal(Render(left) <= Render(right)), nil
	case GREATER:
		return BoolVal(Render(left) > Render(right)), nil
	case GREATER_EQUAL:
		return BoolVal(Render(left) >= Render(right)), nil
	default:
		return Nil, fmt.Errorf("rift: unhandled binary operator %s", n.Op.Type)
	}
}

// addValues implements '+' promotion: number+number adds; any other
// combination touching a string concatenates the rendered forms.
func addValues(left, right Value, line int) (Value, error) {
	if left.Kind == KNumber && right.Kind == KNumber {
		return NumberVal(left.N + right.N), nil
	}
	if left.Kind == KString || right.Kind == KString {
		return StringVal(Render(left) + Render(right)), nil
	}
	return Nil, &RuntimeError{Kind: TypeMismatch, Line: line,
		Msg: fmt.Sprintf("'+' does not support %s and %s", left.Kind, right.Kind)}
}

func arith(left, right Value, line int, op string, f func(a, b float64) float64) (Value, error) {
	if left.Kind != KNumber || right.Kind != KNumber {
		return Nil, &RuntimeError{Kind: TypeMismatch, Line: line,
			Msg: fmt.Sprintf("'%s' requires two numbers, got %s and %s", op, left.Kind, right.Kind)}
	}
	return NumberVal(f(left.N, right.N)), nil
}

func (in *Interpreter) evalAssign(n *Assign, env *Environment) (Value, error) {
	v, err := in.evalExpr(n.Value, env)
	if err != nil {
		return Nil, err
	}
	if err := env.SetAssign(n.Name.Lexeme, v); err != nil {
		if re, ok := err.(*RuntimeError); ok {
			re.Line = n.Name.Line
		}
		return Nil, err
	}
	return v, nil
}

func (in *Interpreter) evalTernary(n *Ternary, env *Environment) (Value, error) {
	cond, err := in.evalExpr(n.Cond, env)
	if err != nil {
		return Nil, err
	}
	if cond.Truthy() {
		return in.evalExpr(n.Then, env)
	}
	return in.evalExpr(n.Else, env)
}

func (in *Interpreter) evalCall(n *Call, env *Environment) (Value, error) {
	callee, err := in.evalExpr(n.Callee, env)
	if err != nil {
		return Nil, err
	}
	if callee.Kind != KFunction {
		return Nil, &RuntimeError{Kind: ArityOrCalleeError, Line: n.Paren.Line, Msg: "attempt to call a non-function value"}
	}
	fn := callee.Fn

	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := in.evalExpr(a, env)
		if err != nil {
			return Nil, err
		}
		args[i] = v
	}
	if len(args) != len(fn.Params) {
		return Nil, &RuntimeError{Kind: ArityOrCalleeError, Line: n.Paren.Line,
			Msg: fmt.Sprintf("%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))}
	}

	// Functions capture only their code body, never the caller's local
	// scope: run against the global frame, not env.
	callEnv := env.Global()
	callEnv.PushScope()
	defer callEnv.PopScope()
	for i, param := range fn.Params {
		callEnv.SetDeclare(param.Lexeme, args[i], false)
	}

	out, err := in.evalDeclsSequential(fn.Body.Decls, callEnv)
	if err != nil {
		return Nil, err
	}
	if out.Return != nil {
		return out.Return.Value, nil
	}
	return Nil, nil
}

// Render formats v the way print() and top-level result strings do:
// numbers in canonical decimal form, strings without surrounding quotes,
// booleans as true/false, nil as null.
func Render(v Value) string {
	switch v.Kind {
	case KNil:
		return "null"
	case KBool:
		if v.B {
			return "true"
		}
		return "false"
	case KNumber:
		return strconv.FormatFloat(v.N, 'g', -1, 64)
	case KString:
		return v.S
	case KFunction:
		return "<fun " + v.Fn.Name + ">"
	default:
		return "undefined"
	}
}
