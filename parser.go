// parser.go — hand-written recursive-descent parser.
//
// A single mutable token cursor, match/consume helpers, panic-mode
// synchronize. The parser consults env only for two compile-time
// symbol-table checks (duplicate declaration, undefined variable). To
// support them it pushes and pops scopes and records each declared name
// bound to Nil; it never assigns real values — that is entirely the
// evaluator's job.
package rift

// syncStarts lists the token kinds that begin a new statement, used by
// synchronize() to find a safe place to resume after a parse error.
var syncStarts = map[Type]bool{
	FUN: true, VAR: true, CONST: true, FOR: true,
	WHILE: true, IF: true, PRINT: true, RETURN: true,
}

type Parser struct {
	tokens []Token
	pos    int
	env    *Environment
	report *Reporter
}

// NewParser builds a Parser over tokens. env is the symbol table the
// parser consults for its compile-time undeclared/duplicate checks; it
// must be the same instance the evaluator will later run against.
func NewParser(tokens []Token, env *Environment) *Parser {
	return &Parser{tokens: tokens, env: env, report: &Reporter{}}
}

// Parse builds the Program AST. After each error it synchronizes and keeps
// parsing, but it returns a nil Program whenever at least one error was
// reported; the Reporter always holds every diagnostic collected along
// the way.
func (p *Parser) Parse() (*Program, *Reporter) {
	prog := &Program{}
	for !p.atEnd() {
		d, err := p.declaration()
		if err != nil {
			p.report.Report(err)
			p.synchronize()
			continue
		}
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		}
	}
	if p.report.HasErrors() {
		return nil, p.report
	}
	return prog, p.report
}

// ---- cursor primitives ----

func (p *Parser) peek() Token { return p.tokens[p.pos] }
func (p *Parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}
func (p *Parser) previous() Token { return p.tokens[p.pos-1] }
func (p *Parser) atEnd() bool     { return p.peek().Type == EOF }

func (p *Parser) advance() Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

// match consumes and returns true if the current token matches any of
// the given kinds (wildcard lexeme).
func (p *Parser) match(kinds ...Type) bool {
	for _, k := range kinds {
		if p.peek().Matches(k, "") {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind Type) bool { return p.peek().Matches(kind, "") }

// consume requires the current token to be of kind, else raises a
// ParseError carrying msg.
func (p *Parser) consume(kind Type, msg string) (Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	tok := p.peek()
	return Token{}, &ParseError{Kind: ParseErr, Line: tok.Line, Col: tok.Col, Msg: msg}
}

func (p *Parser) synchronize() {
	// Step over the offending token unless it starts a new statement, so
	// that recovery always makes progress.
	if !syncStarts[p.peek().Type] {
		p.advance()
	}
	for !p.atEnd() {
		if p.previous().Type == SEMICOLON {
			return
		}
		if syncStarts[p.peek().Type] {
			return
		}
		p.advance()
	}
}

// ---- declarations & statements ----

func (p *Parser) declaration() (Decl, error) {
	if p.match(VAR, CONST) {
		return p.varDecl(p.previous().Type == CONST)
	}
	if p.match(FUN) {
		return p.funcDecl()
	}
	return p.statement()
}

func (p *Parser) varDecl(isConst bool) (Decl, error) {
	kind := IDENTIFIER
	if isConst {
		kind = CONST_IDENTIFIER
	}
	name, err := p.consume(kind, "expected identifier after 'var'/'const'")
	if err != nil {
		return nil, err
	}
	if p.env.DeclaredInCurrentScope(name.Lexeme) {
		return nil, &ParseError{Kind: DuplicateDeclaration, Line: name.Line, Col: name.Col,
			Msg: "duplicate declaration of " + name.Lexeme}
	}

	var init Expr
	if p.match(EQUAL) {
		e, err := p.assignment()
		if err != nil {
			return nil, err
		}
		init = e
	} else if isConst {
		return nil, &ParseError{Kind: ParseErr, Line: name.Line, Col: name.Col,
			Msg: "const declaration requires an initializer"}
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}

	// Pre-declare in the symbol table so subsequent statements in this
	// same scope see the binding (matches the evaluator's own binding
	// order: a var's own initializer cannot see the var itself).
	p.env.SetDeclare(name.Lexeme, Nil, isConst)
	return &VarDecl{Name: name, Init: init, IsConst: isConst}, nil
}

func (p *Parser) funcDecl() (Decl, error) {
	name, err := p.consume(IDENTIFIER, "expected function name after 'fun'")
	if err != nil {
		return nil, err
	}
	if p.env.DeclaredInCurrentScope(name.Lexeme) {
		return nil, &ParseError{Kind: DuplicateDeclaration, Line: name.Line, Col: name.Col,
			Msg: "duplicate declaration of " + name.Lexeme}
	}
	p.env.SetDeclare(name.Lexeme, Nil, false)

	if _, err := p.consume(LEFT_PAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []Token
	if !p.check(RIGHT_PAREN) {
		for {
			param, err := p.consume(IDENTIFIER, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}

	p.env.PushScope()
	for _, param := range params {
		p.env.SetDeclare(param.Lexeme, Nil, false)
	}
	body, err := p.blockBody()
	p.env.PopScope()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) statement() (Stmt, error) {
	switch {
	case p.match(PRINT):
		return p.printStmt()
	case p.match(IF):
		return p.ifStmt()
	case p.match(FOR):
		return p.forStmt()
	case p.match(WHILE):
		return p.whileStmt()
	case p.match(RETURN):
		return p.returnStmt()
	case p.check(LEFT_BRACE):
		p.advance()
		p.env.PushScope()
		blk, err := p.blockRest()
		p.env.PopScope()
		return blk, err
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() (Stmt, error) {
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: e}, nil
}

func (p *Parser) printStmt() (Stmt, error) {
	if _, err := p.consume(LEFT_PAREN, "expected '(' after 'print'"); err != nil {
		return nil, err
	}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after print argument"); err != nil {
		return nil, err
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after print statement"); err != nil {
		return nil, err
	}
	return &PrintStmt{Expr: e}, nil
}

// blockBody parses "{" declaration* "}" assuming the caller has already
// pushed a fresh scope (used by funcDecl, which must seed parameters
// into that scope before parsing the body).
func (p *Parser) blockBody() (*Block, error) {
	if _, err := p.consume(LEFT_BRACE, "expected '{' to begin block"); err != nil {
		return nil, err
	}
	return p.blockRest()
}

// blockRest parses declaration* "}", the current token being the first
// one after the already-consumed "{". Caller manages scope push/pop.
func (p *Parser) blockRest() (*Block, error) {
	blk := &Block{}
	for !p.check(RIGHT_BRACE) && !p.atEnd() {
		d, err := p.declaration()
		if err != nil {
			return nil, err
		}
		blk.Decls = append(blk.Decls, d)
	}
	if _, err := p.consume(RIGHT_BRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return blk, nil
}

// bodyOrStatement parses either a brace-delimited block (a fresh scope
// is pushed) or a single bare statement (no new scope, matching a
// single-statement if/for/while body's usual semantics).
func (p *Parser) bodyOrStatement() (Stmt, error) {
	if p.check(LEFT_BRACE) {
		p.advance()
		p.env.PushScope()
		blk, err := p.blockRest()
		p.env.PopScope()
		if err != nil {
			return nil, err
		}
		return blk, nil
	}
	return p.statement()
}

func (p *Parser) ifStmt() (Stmt, error) {
	branch, err := p.parseCondBody()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Branches: []Branch{branch}}
	for p.match(ELIF) {
		b, err := p.parseCondBody()
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, b)
	}
	if p.match(ELSE) {
		body, err := p.bodyOrStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}
	return stmt, nil
}

func (p *Parser) parseCondBody() (Branch, error) {
	if _, err := p.consume(LEFT_PAREN, "expected '(' after 'if'/'elif'"); err != nil {
		return Branch{}, err
	}
	cond, err := p.expression()
	if err != nil {
		return Branch{}, err
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after condition"); err != nil {
		return Branch{}, err
	}
	body, err := p.bodyOrStatement()
	if err != nil {
		return Branch{}, err
	}
	return Branch{Cond: cond, Body: body}, nil
}

func (p *Parser) whileStmt() (Stmt, error) {
	if _, err := p.consume(LEFT_PAREN, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.bodyOrStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) forStmt() (Stmt, error) {
	if _, err := p.consume(LEFT_PAREN, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	// The initializer's scope must span the whole loop (condition, post,
	// and every iteration of the body), so push it before parsing Init
	// and only pop after the body is fully parsed.
	p.env.PushScope()
	popScope := true
	defer func() {
		if popScope {
			p.env.PopScope()
		}
	}()

	var init Decl
	switch {
	case p.match(SEMICOLON):
		// no initializer
	case p.match(VAR, CONST):
		d, err := p.varDecl(p.previous().Type == CONST)
		if err != nil {
			return nil, err
		}
		init = d
	default:
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(SEMICOLON, "expected ';' after for-loop initializer"); err != nil {
			return nil, err
		}
		init = &ExprStmt{Expr: e}
	}

	var cond Expr
	if !p.check(SEMICOLON) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		cond = e
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after for-loop condition"); err != nil {
		return nil, err
	}

	var post Expr
	if !p.check(RIGHT_PAREN) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		post = e
	}
	if _, err := p.consume(RIGHT_PAREN, "expected ')' after for-loop clauses"); err != nil {
		return nil, err
	}

	body, err := p.bodyOrStatement()
	if err != nil {
		return nil, err
	}
	popScope = false
	p.env.PopScope()
	return &ForStmt{Init: init, Cond: cond, Post: post, Body: body}, nil
}

func (p *Parser) returnStmt() (Stmt, error) {
	keyword := p.previous()
	var value Expr
	if !p.check(SEMICOLON) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = e
	}
	if _, err := p.consume(SEMICOLON, "expected ';' after return statement"); err != nil {
		return nil, err
	}
	return &ReturnStmt{Keyword: keyword, Value: value}, nil
}

// ---- expressions ----

func (p *Parser) expression() (Expr, error) { return p.assignment() }

// assignment uses a two-token lookahead: if the current token is an
// identifier and the next is '=', and the token after that isn't an
// immediate terminator (';' or EOF), parse as Assign; otherwise fall
// through to the ternary/binary chain.
func (p *Parser) assignment() (Expr, error) {
	if (p.check(IDENTIFIER) || p.check(CONST_IDENTIFIER)) && p.peekNext().Matches(EQUAL, "") &&
		p.tokens[p.pos+2].Type != SEMICOLON && p.tokens[p.pos+2].Type != EOF {
		name := p.advance()
		p.advance() // consume '='
		if !p.env.DeclaredInCurrentScope(name.Lexeme) {
			if _, ok := p.env.Get(name.Lexeme); !ok {
				return nil, &ParseError{Kind: UndefinedVariable, Line: name.Line, Col: name.Col,
					Msg: "undefined variable " + name.Lexeme}
			}
		}
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return &Assign{Name: name, Value: value}, nil
	}
	return p.ternary()
}

func (p *Parser) ternary() (Expr, error) {
	cond, err := p.nullish()
	if err != nil {
		return nil, err
	}
	if p.match(QUESTION) {
		then, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(COLON, "expected ':' in ternary expression"); err != nil {
			return nil, err
		}
		els, err := p.ternary()
		if err != nil {
			return nil, err
		}
		return &Ternary{Cond: cond, Then: then, Else: els}, nil
	}
	return cond, nil
}

func (p *Parser) nullish() (Expr, error) {
	return p.leftAssocBinary(p.logicOr, NULLISH)
}

func (p *Parser) logicOr() (Expr, error) {
	return p.leftAssocBinary(p.logicAnd, OR)
}

func (p *Parser) logicAnd() (Expr, error) {
	return p.leftAssocBinary(p.equality, AND)
}

func (p *Parser) equality() (Expr, error) {
	return p.leftAssocBinary(p.comparison, BANG_EQUAL, EQUAL_EQUAL)
}

func (p *Parser) comparison() (Expr, error) {
	return p.leftAssocBinary(p.term, GREATER, GREATER_EQUAL, LESS, LESS_EQUAL)
}

func (p *Parser) term() (Expr, error) {
	return p.leftAssocBinary(p.factor, PLUS, MINUS)
}

func (p *Parser) factor() (Expr, error) {
	return p.leftAssocBinary(p.unary, STAR, SLASH)
}

// leftAssocBinary factors the repeated "next (( op ) next)*" shape shared
// by every left-associative binary precedence level.
func (p *Parser) leftAssocBinary(next func() (Expr, error), ops ...Type) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &Binary{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) unary() (Expr, error) {
	if p.match(BANG, MINUS) {
		op := p.previous()
		expr, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, Expr: expr}, nil
	}
	return p.call()
}

func (p *Parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.check(LEFT_PAREN) {
		p.advance()
		var args []Expr
		if !p.check(RIGHT_PAREN) {
			for {
				a, err := p.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if !p.match(COMMA) {
					break
				}
			}
		}
		paren, err := p.consume(RIGHT_PAREN, "expected ')' after call arguments")
		if err != nil {
			return nil, err
		}
		expr = &Call{Callee: expr, Paren: paren, Args: args}
	}
	return expr, nil
}

func (p *Parser) primary() (Expr, error) {
	switch {
	case p.match(TRUE, FALSE, NIL, NUMBER, STRING):
		return &Literal{Value: p.previous()}, nil
	case p.match(IDENTIFIER, CONST_IDENTIFIER):
		name := p.previous()
		if _, ok := p.env.Get(name.Lexeme); !ok {
			return nil, &ParseError{Kind: UndefinedVariable, Line: name.Line, Col: name.Col,
				Msg: "undefined variable " + name.Lexeme}
		}
		return &Literal{Value: name}, nil
	case p.match(LEFT_PAREN):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(RIGHT_PAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return &Grouping{Expr: expr}, nil
	default:
		tok := p.peek()
		return nil, &ParseError{Kind: ParseErr, Line: tok.Line, Col: tok.Col,
			Msg: "expected expression, found " + tok.Type.String()}
	}
}
