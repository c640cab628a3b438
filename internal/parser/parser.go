// Package parser implements a Pratt (precedence-climbing) parser over
// internal/lexer's token stream, producing internal/ast nodes.
//
// Grounded on funvibe/funxy's internal/parser Pratt-parser shape
// (prefix/infix parse-function tables keyed by token.Type, precedence
// climbing via a binding-power table) rewritten against Arpha's own token
// set and AST node catalogue.
package parser

import (
	"fmt"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/lexer"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
)

// precedence levels, lowest to highest (spec §3.2's operator grammar).
const (
	_ int = iota
	precLowest
	precAssign
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precCall
	precAccess
)

var precedences = map[token.Type]int{
	token.ASSIGN:  precAssign,
	token.OR:      precOr,
	token.AND:     precAnd,
	token.EQ:      precEquality,
	token.NEQ:     precEquality,
	token.LT:      precRelational,
	token.GT:      precRelational,
	token.LE:      precRelational,
	token.GE:      precRelational,
	token.PLUS:    precAdditive,
	token.MINUS:   precAdditive,
	token.STAR:    precMultiplicative,
	token.SLASH:   precMultiplicative,
	token.PERCENT: precMultiplicative,
	token.LPAREN:  precCall,
	token.DOT:     precAccess,
}

var binOpKinds = map[token.Type]ast.BinaryOpKind{
	token.PLUS: ast.Add, token.MINUS: ast.Sub, token.STAR: ast.Mul,
	token.SLASH: ast.Div, token.PERCENT: ast.Mod,
	token.EQ: ast.Eq, token.NEQ: ast.Neq,
	token.LT: ast.Lt, token.GT: ast.Gt, token.LE: ast.Le, token.GE: ast.Ge,
	token.AND: ast.LAnd, token.OR: ast.LOr,
}

// ParseError is a syntax error with its source position.
type ParseError struct {
	Pos token.Position
	Msg string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Parser consumes a lexer.Lexer's token stream and builds ast nodes
// against a given root scope.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token

	errors []error
}

// New creates a Parser over src, attributing positions to file.
func New(file, src string) *Parser {
	p := &Parser{l: lexer.New(file, src)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.Next()
}

func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(t token.Type) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	p.errorf(p.cur.Pos, "expected %s, got %s %q", t, p.cur.Type, p.cur.Lexeme)
	return false
}

// ParseProgram parses the full token stream as a single top-level Block
// owning rootScope.
func (p *Parser) ParseProgram(rootScope *scope.Scope) *ast.Block {
	pos := p.cur.Pos
	block := ast.NewBlock(pos, rootScope)
	for p.cur.Type != token.EOF {
		st := p.parseStatement(rootScope)
		if st != nil {
			block.Children = append(block.Children, st)
		}
		if p.cur.Type == token.SEMI {
			p.next()
		}
	}
	return block
}

func (p *Parser) parseStatement(s *scope.Scope) ast.Statement {
	switch p.cur.Type {
	case token.VAR:
		return p.parseVarDecl(s)
	case token.DEF:
		return p.parseFuncDecl(s, false)
	case token.MACRO:
		return p.parseFuncDecl(s, true)
	default:
		e := p.parseExpression(s, precLowest)
		if e == nil {
			p.next()
			return nil
		}
		return &ast.ExpressionStatement{Expr: e}
	}
}

func (p *Parser) parseVarDecl(s *scope.Scope) ast.Statement {
	pos := p.cur.Pos
	p.next() // 'var'
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected variable name")
		return nil
	}
	name := p.cur.Lexeme
	p.next()

	v := ast.NewVariable(pos, name, s, true)
	if p.cur.Type == token.COLON {
		p.next()
		v.TypePattern = p.parseExpression(s, precAssign+1)
	}
	if p.cur.Type == token.ASSIGN {
		p.next()
		v.Init = p.parseExpression(s, precAssign+1)
	}
	s.Define(name, v)
	return v
}

func (p *Parser) parseFuncDecl(s *scope.Scope, isMacro bool) ast.Statement {
	pos := p.cur.Pos
	p.next() // 'def' | 'macro'
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected function name")
		return nil
	}
	name := p.cur.Lexeme
	p.next()

	fn := ast.NewFunction(pos, name, s)
	if isMacro {
		fn.Flags |= ast.FnMacro
	}

	bodyScope := scope.New(s)
	bodyScope.Owner = fn
	fn.BodyScope = bodyScope

	if p.expect(token.LPAREN) {
		for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
			arg := p.parseArgument(bodyScope, fn)
			fn.Arguments = append(fn.Arguments, arg)
			bodyScope.Define(arg.Name, arg)
			if p.cur.Type == token.COMMA {
				p.next()
				continue
			}
			break
		}
		p.expect(token.RPAREN)
	}

	if p.cur.Type == token.ARROW {
		p.next()
		fn.ReturnTypePattern = p.parsePattern(bodyScope)
	}

	p.registerOverload(s, name, fn)

	if p.cur.Type == token.LBRACE {
		fn.Body = p.parseBlock(bodyScope)
		if containsReturn(fn.Body) {
			fn.Flags |= ast.FnContainsReturn
		}
	}
	return fn
}

// registerOverload binds name to fn in s, promoting an existing single
// Function binding to an Overloadset on the second definition (spec
// §4.5's "the resolver promotes a name bound to two Functions").
func (p *Parser) registerOverload(s *scope.Scope, name string, fn *ast.Function) {
	existing, ok := s.Prefix(name)
	if !ok {
		s.Define(name, fn)
		return
	}
	switch e := existing.(type) {
	case *ast.Function:
		set := ast.NewOverloadset(name, e, fn)
		s.Define(name, set)
	case *ast.Overloadset:
		e.Add(fn)
	default:
		p.errorf(fn.Pos(), "%q is already defined as a non-function", name)
	}
}

func containsReturn(b *ast.Block) bool {
	if b == nil {
		return false
	}
	for _, st := range b.Children {
		if es, ok := st.(*ast.ExpressionStatement); ok {
			if _, ok := es.Expr.(*ast.Return); ok {
				return true
			}
		}
	}
	return false
}

func (p *Parser) parseArgument(s *scope.Scope, owner *ast.Function) *ast.Argument {
	pos := p.cur.Pos
	label := ""
	if p.cur.Type == token.IDENT && p.peek.Type == token.IDENT {
		label = p.cur.Lexeme
		p.next()
	}
	name := "_"
	if p.cur.Type == token.IDENT || p.cur.Type == token.WILDCARD {
		name = p.cur.Lexeme
		p.next()
	}
	var pattern ast.Expression
	if p.cur.Type == token.COLON {
		p.next()
		pattern = p.parsePattern(s)
	} else {
		pattern = ast.NewWildcardLiteral(pos)
	}
	if patternIsGeneric(pattern) {
		owner.Flags |= ast.FnHasPatternArgs
	}
	arg := ast.NewArgument(pos, name, pattern)
	arg.Owner = owner
	arg.Label = label
	if p.cur.Type == token.ASSIGN {
		p.next()
		arg.Default = p.parseExpression(s, precAssign+1)
	}
	return arg
}

// parsePattern parses a type-pattern subtree (spec §4.3): a bare `_`
// wildcard, a `label:inner` binding (e.g. `T:_`, recursively nestable as in
// `T: U: _`; an `if` constraint is not parsed here), or — falling through to the
// ordinary expression grammar — a ground type name/expression that the
// resolver will settle into a TypeRef.
func (p *Parser) parsePattern(s *scope.Scope) ast.Expression {
	pos := p.cur.Pos
	if p.cur.Type == token.IDENT && p.peek.Type == token.COLON {
		label := p.cur.Lexeme
		p.next() // label
		p.next() // ':'
		inner := p.parsePattern(s)
		return ast.NewBoundPattern(pos, label, inner)
	}
	if p.cur.Type == token.WILDCARD {
		p.next()
		return ast.NewWildcardLiteral(pos)
	}
	return p.parseExpression(s, precAssign+1)
}

// patternIsGeneric reports whether a parsed pattern subtree contains a hole
// (spec §4.3's `_`) or a bound name anywhere in it, the condition under
// which a Function carrying it as an argument/return pattern is generic
// (FnHasPatternArgs) rather than having a plain ground type (spec §4.4's
// HAS_PATTERN_ARGUMENTS flag). A bare identifier naming a concrete type
// (e.g. `Int32`) is not itself a pattern — it only becomes a TypeRef once
// the resolver looks it up.
func patternIsGeneric(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.WildcardLiteral, *ast.BoundPattern:
		return true
	case *ast.Call:
		return patternIsGeneric(v.Callee) || patternIsGeneric(v.Arg)
	case *ast.Tuple:
		for _, c := range v.Children {
			if patternIsGeneric(c) {
				return true
			}
		}
	}
	return false
}

func (p *Parser) parseBlock(parent *scope.Scope) *ast.Block {
	pos := p.cur.Pos
	p.expect(token.LBRACE)
	s := scope.New(parent)
	block := ast.NewBlock(pos, s)
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		st := p.parseStatement(s)
		if st != nil {
			block.Children = append(block.Children, st)
		}
		if p.cur.Type == token.SEMI {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return block
}

// parseExpression is the Pratt core: a prefix parse followed by repeated
// infix/postfix parses while the next operator's precedence exceeds
// minPrec.
func (p *Parser) parseExpression(s *scope.Scope, minPrec int) ast.Expression {
	left := p.parsePrefix(s)
	if left == nil {
		return nil
	}
	for {
		prec, ok := precedences[p.cur.Type]
		if !ok || prec <= minPrec {
			break
		}
		left = p.parseInfix(s, left, prec)
	}
	return left
}

func (p *Parser) parsePrefix(s *scope.Scope) ast.Expression {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.INT:
		v := parseIntLiteral(p.cur.Lexeme)
		p.next()
		return ast.NewIntegerLiteral(pos, v)
	case token.FLOAT:
		v := parseFloatLiteral(p.cur.Lexeme)
		p.next()
		return ast.NewFloatLiteral(pos, v)
	case token.STRING:
		v := p.cur.Lexeme
		p.next()
		return ast.NewStringLiteral(pos, v)
	case token.CHAR:
		v := parseCharLiteral(p.cur.Lexeme)
		p.next()
		return ast.NewCharLiteral(pos, v)
	case token.TRUE:
		p.next()
		return ast.NewBoolLiteral(pos, true)
	case token.FALSE:
		p.next()
		return ast.NewBoolLiteral(pos, false)
	case token.WILDCARD:
		p.next()
		return ast.NewWildcardLiteral(pos)
	case token.IDENT:
		name := p.cur.Lexeme
		p.next()
		return ast.NewUnresolvedSymbol(pos, name, s)
	case token.NOT:
		p.next()
		e := p.parseExpression(s, precUnary)
		return ast.NewUnaryOp(pos, ast.UnaryNot, e)
	case token.MINUS:
		p.next()
		e := p.parseExpression(s, precUnary)
		return ast.NewUnaryOp(pos, ast.UnaryNeg, e)
	case token.AMP:
		p.next()
		e := p.parseExpression(s, precUnary)
		return ast.NewPointerOp(pos, ast.AddressOf, e)
	case token.CARET:
		p.next()
		e := p.parseExpression(s, precUnary)
		return ast.NewPointerOp(pos, ast.Dereference, e)
	case token.LPAREN:
		return p.parseParenOrTuple(s)
	case token.LBRACE:
		return p.parseBlock(s)
	case token.IF:
		return p.parseIf(s)
	case token.LOOP:
		p.next()
		body := p.parseExpression(s, precLowest)
		return ast.NewLoop(pos, body)
	case token.RETURN:
		p.next()
		if p.atStatementEnd() {
			return ast.NewReturn(pos, nil)
		}
		return ast.NewReturn(pos, p.parseExpression(s, precAssign))
	case token.BREAK:
		p.next()
		return ast.NewControlFlow(pos, ast.Break)
	case token.CONTINUE:
		p.next()
		return ast.NewControlFlow(pos, ast.Continue)
	case token.FALLTHROUGH:
		p.next()
		return ast.NewControlFlow(pos, ast.Fallthrough)
	case token.MATCH:
		return p.parseMatch(s)
	case token.QUOTEOPEN:
		return p.parseQuote(s)
	default:
		p.errorf(pos, "unexpected token %s %q", p.cur.Type, p.cur.Lexeme)
		p.next()
		return nil
	}
}

func (p *Parser) atStatementEnd() bool {
	switch p.cur.Type {
	case token.SEMI, token.RBRACE, token.EOF:
		return true
	}
	return false
}

func (p *Parser) parseParenOrTuple(s *scope.Scope) ast.Expression {
	pos := p.cur.Pos
	p.next() // '('
	if p.cur.Type == token.RPAREN {
		p.next()
		return ast.NewUnitLiteral(pos)
	}
	var children []ast.Expression
	var labels []string
	for {
		label := ""
		if p.cur.Type == token.IDENT && p.peek.Type == token.COLON {
			label = p.cur.Lexeme
			p.next()
			p.next()
		}
		e := p.parseExpression(s, precAssign+1)
		children = append(children, e)
		labels = append(labels, label)
		if p.cur.Type == token.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	if len(children) == 1 && labels[0] == "" {
		return children[0]
	}
	return ast.NewTuple(pos, children, labels)
}

func (p *Parser) parseIf(s *scope.Scope) ast.Expression {
	pos := p.cur.Pos
	p.next() // 'if'
	cond := p.parseExpression(s, precLowest)
	p.expect(token.THEN)
	then := p.parseExpression(s, precLowest)
	var els ast.Expression
	if p.cur.Type == token.ELSE {
		p.next()
		els = p.parseExpression(s, precLowest)
	}
	return ast.NewIf(pos, cond, then, els)
}

func (p *Parser) parseMatch(s *scope.Scope) ast.Expression {
	pos := p.cur.Pos
	p.next() // 'match'
	obj := p.parseExpression(s, precLowest)
	p.expect(token.LBRACE)
	var cases []ast.MatchCase
	for p.cur.Type == token.CASE {
		p.next()
		caseScope := scope.New(s)
		pat := p.parseExpression(caseScope, precAssign+1)
		var guard ast.Expression
		if p.cur.Type == token.IF {
			p.next()
			guard = p.parseExpression(caseScope, precLowest)
		}
		p.expect(token.ARROW)
		body := p.parseExpression(caseScope, precLowest)
		cases = append(cases, ast.MatchCase{Pattern: pat, Guard: guard, Body: body, Scope: caseScope})
		if p.cur.Type == token.SEMI {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return ast.NewMatch(pos, obj, cases)
}

func (p *Parser) parseQuote(s *scope.Scope) ast.Expression {
	pos := p.cur.Pos
	p.next() // '[>'
	quoteScope := scope.New(s)
	inner := p.parseExpression(quoteScope, precLowest)
	p.expect(token.QUOTECLOSE)
	return ast.NewNodeReference(pos, inner)
}

func (p *Parser) parseInfix(s *scope.Scope, left ast.Expression, prec int) ast.Expression {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.ASSIGN:
		p.next()
		value := p.parseExpression(s, prec-1)
		return ast.NewAssignment(pos, left, value, false)
	case token.LPAREN:
		arg := p.parseParenOrTuple(s)
		return ast.NewCall(pos, left, arg)
	case token.DOT:
		p.next()
		if p.cur.Type != token.IDENT {
			p.errorf(p.cur.Pos, "expected field name after '.'")
			return left
		}
		name := p.cur.Lexeme
		p.next()
		return ast.NewAccessExpression(pos, left, name)
	default:
		kind, ok := binOpKinds[p.cur.Type]
		if !ok {
			p.errorf(pos, "unexpected infix token %s", p.cur.Type)
			p.next()
			return left
		}
		p.next()
		right := p.parseExpression(s, prec)
		return ast.NewBinaryOp(pos, kind, left, right)
	}
}
