// Package parser implements a Pratt parser for the main Akkado language,
// turning a token stream into an arena-allocated AST.
package parser

import (
	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/diag"
	"github.com/akkadolang/cedarc/internal/miniparser"
	"github.com/akkadolang/cedarc/internal/token"
)

// Precedence levels, low to high.
type precedence uint8

const (
	precNone precedence = iota
	precPipe
	precAddition
	precMultiplication
	precPower
	precMethod
	precCall
	precPrimary
)

// parsedParam is one closure/function parameter before it becomes an AST node.
type parsedParam struct {
	name         string
	hasDefault   bool
	defaultValue float64
}

// Parser turns a token stream into an AST, recovering from syntax errors at
// statement boundaries (panic mode) so a single run can report more than one
// problem.
type Parser struct {
	tokens   []token.Token
	filename string
	diags    *diag.Store
	arena    *ast.Arena

	current   int
	panicMode bool
}

// New creates a parser over tokens (must end with an Eof token).
func New(tokens []token.Token, filename string) *Parser {
	return &Parser{
		tokens:   tokens,
		filename: filename,
		diags:    diag.NewStore(filename),
		arena:    ast.NewArena(),
	}
}

// Diagnostics returns diagnostics accumulated during parsing.
func (p *Parser) Diagnostics() []diag.Diagnostic { return p.diags.All() }

// HasErrors reports whether parsing produced any error diagnostic.
func (p *Parser) HasErrors() bool { return p.diags.HasErrors() }

// Parse parses the entire token stream into a Program node.
func (p *Parser) Parse() ast.AST {
	root := p.parseProgram()
	return ast.AST{Arena: p.arena, Root: root}
}

// Parse is a convenience function combining New and Parse.
func Parse(tokens []token.Token, filename string) (ast.AST, []diag.Diagnostic) {
	p := New(tokens, filename)
	tree := p.Parse()
	return tree, p.Diagnostics()
}

// --- token navigation ---

func (p *Parser) current_() token.Token { return p.tokens[p.current] }
func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }
func (p *Parser) isAtEnd() bool         { return p.current_().Type == token.Eof }

func (p *Parser) check(t token.Type) bool { return p.current_().Type == t }

func (p *Parser) match(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) consume(t token.Type, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.error(message)
	return p.current_()
}

func (p *Parser) peekAhead(offset int) token.Token {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

// --- error handling ---

func (p *Parser) error(message string) {
	p.errorAt(p.current_(), message)
}

func (p *Parser) errorAt(tok token.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.diags.Emit(diag.Error, "P001", message, tok.Location)
}

// synchronize skips tokens until a likely statement boundary: a known
// leading keyword, right after a '}', or an identifier immediately
// followed by '='.
func (p *Parser) synchronize() {
	p.panicMode = false

	for !p.isAtEnd() {
		switch p.current_().Type {
		case token.Post, token.Fn, token.Pat, token.Seq, token.Timeline, token.Note, token.Match:
			return
		}

		if p.previous().Type == token.RBrace {
			return
		}

		if p.check(token.Identifier) && p.peekAhead(1).Type == token.Equals {
			return
		}

		p.advance()
	}
}

// --- node creation ---

func (p *Parser) makeNode(typ ast.Type) ast.Index {
	return p.arena.Alloc(typ, p.current_().Location)
}

func (p *Parser) makeNodeAt(typ ast.Type, tok token.Token) ast.Index {
	return p.arena.Alloc(typ, tok.Location)
}

// --- program / statements ---

func (p *Parser) parseProgram() ast.Index {
	program := p.makeNode(ast.Program)

	for !p.isAtEnd() {
		stmt := p.parseStatement()
		if stmt != ast.NullNode {
			p.arena.AddChild(program, stmt)
		}
		if p.panicMode {
			p.synchronize()
		}
	}

	return program
}

func (p *Parser) parseStatement() ast.Index {
	if p.match(token.Fn) {
		return p.parseFunctionDef()
	}

	if p.match(token.Post) {
		return p.parsePostStmt()
	}

	if p.check(token.Identifier) && p.peekAhead(1).Type == token.Equals {
		name := p.advance()
		return p.parseAssignment(name)
	}

	return p.parseExpression()
}

func (p *Parser) parseAssignment(nameTok token.Token) ast.Index {
	p.consume(token.Equals, "Expected '=' after identifier")

	node := p.makeNodeAt(ast.Assignment, nameTok)
	p.arena.Get(node).Data = ast.IdentifierData{Name: nameTok.Lexeme}

	value := p.parseExpression()
	if value != ast.NullNode {
		p.arena.AddChild(node, value)
	}

	return node
}

func (p *Parser) parsePostStmt() ast.Index {
	postTok := p.previous()
	p.consume(token.LParen, "Expected '(' after 'post'")

	node := p.makeNodeAt(ast.PostStmt, postTok)

	if !p.check(token.LParen) {
		p.error("Expected closure in post()")
		return node
	}

	p.advance() // consume the closure's '('
	closure := p.parseClosure()
	if closure != ast.NullNode {
		p.arena.AddChild(node, closure)
	}

	p.consume(token.RParen, "Expected ')' after post closure")
	return node
}

// parseFunctionDef parses `fn name(params) -> body`. The 'fn' keyword has
// already been consumed.
func (p *Parser) parseFunctionDef() ast.Index {
	fnTok := p.previous()

	if !p.check(token.Identifier) {
		p.error("Expected function name after 'fn'")
		return ast.NullNode
	}
	nameTok := p.advance()

	node := p.makeNodeAt(ast.FunctionDef, fnTok)

	p.consume(token.LParen, "Expected '(' after function name")
	params := p.parseParamList()
	p.consume(token.RParen, "Expected ')' after function parameters")
	p.consume(token.Arrow, "Expected '->' after function parameters")

	body := p.parseClosureBody()

	p.addParamNodes(node, fnTok, params)
	if body != ast.NullNode {
		p.arena.AddChild(node, body)
	}

	p.arena.Get(node).Data = ast.FunctionDefData{Name: nameTok.Lexeme, ParamCount: len(params)}
	return node
}

// --- expression parsing (Pratt parser) ---

func (p *Parser) parseExpression() ast.Index {
	return p.parsePrecedence(precPipe)
}

func (p *Parser) parsePrecedence(prec precedence) ast.Index {
	left := p.parsePrefix()
	if left == ast.NullNode {
		return ast.NullNode
	}

	left = p.parsePostfixChain(left, prec)

	for !p.isAtEnd() {
		if !p.isInfixOperator(p.current_().Type) {
			break
		}
		opPrec := p.getPrecedence(p.current_().Type)
		if opPrec < prec {
			break
		}

		op := p.advance()
		left = p.parseInfix(left, op)
		left = p.parsePostfixChain(left, prec)
	}

	return left
}

// parsePostfixChain absorbs method calls and index expressions, which bind
// tighter than any binary operator.
func (p *Parser) parsePostfixChain(left ast.Index, prec precedence) ast.Index {
	if prec > precMethod {
		return left
	}
	for {
		switch {
		case p.check(token.Dot):
			p.advance()
			left = p.parseMethodCall(left)
		case p.check(token.LBracket):
			p.advance()
			left = p.parseIndexExpr(left)
		default:
			return left
		}
	}
}

func (p *Parser) parsePrefix() ast.Index {
	switch p.current_().Type {
	case token.Number:
		return p.parseNumber()
	case token.PitchLit:
		return p.parsePitch()
	case token.ChordLit:
		return p.parseChord()
	case token.True, token.False:
		return p.parseBool()
	case token.String:
		return p.parseString()
	case token.Identifier:
		return p.parseIdentifierOrCall()
	case token.Hole:
		return p.parseHole()
	case token.LParen:
		return p.parseGrouping()
	case token.LBracket:
		return p.parseArrayLiteral()
	case token.Match:
		return p.parseMatchExpr()
	case token.Pat, token.Seq, token.Timeline, token.Note:
		return p.parseMiniLiteral()
	default:
		p.error("Expected expression")
		return ast.NullNode
	}
}

func (p *Parser) parseInfix(left ast.Index, op token.Token) ast.Index {
	switch op.Type {
	case token.Pipe:
		return p.parsePipe(left, op)
	case token.Plus, token.Minus, token.Star, token.Slash, token.Caret:
		return p.parseBinary(left, op)
	default:
		p.error("Unknown infix operator")
		return left
	}
}

// --- literal parsers ---

func (p *Parser) parseNumber() ast.Index {
	tok := p.advance()
	node := p.makeNodeAt(ast.NumberLit, tok)
	p.arena.Get(node).Data = ast.NumberData{Value: tok.Number.Value, IsInteger: tok.Number.IsInteger}
	return node
}

func (p *Parser) parsePitch() ast.Index {
	tok := p.advance()
	node := p.makeNodeAt(ast.PitchLit, tok)
	p.arena.Get(node).Data = ast.PitchData{MIDINote: tok.AsPitch()}
	return node
}

func (p *Parser) parseChord() ast.Index {
	tok := p.advance()
	node := p.makeNodeAt(ast.ChordLit, tok)
	chord := tok.AsChord()
	p.arena.Get(node).Data = ast.ChordData{RootMIDI: chord.RootMIDI, Intervals: chord.Intervals}
	return node
}

func (p *Parser) parseBool() ast.Index {
	tok := p.advance()
	node := p.makeNodeAt(ast.BoolLit, tok)
	p.arena.Get(node).Data = ast.BoolData{Value: tok.Type == token.True}
	return node
}

func (p *Parser) parseString() ast.Index {
	tok := p.advance()
	node := p.makeNodeAt(ast.StringLit, tok)
	p.arena.Get(node).Data = ast.StringData{Value: tok.AsString()}
	return node
}

func (p *Parser) parseHole() ast.Index {
	tok := p.advance()
	node := p.makeNodeAt(ast.Hole, tok)

	if p.check(token.Dot) {
		p.advance()
		if !p.check(token.Identifier) {
			p.error("Expected field name after '%.'")
			return node
		}
		field := p.advance()
		p.arena.Get(node).Data = ast.HoleData{FieldName: field.Lexeme}
		return node
	}

	p.arena.Get(node).Data = ast.HoleData{}
	return node
}

func (p *Parser) parseIdentifierOrCall() ast.Index {
	nameTok := p.advance()

	if p.check(token.LParen) {
		return p.parseCall(nameTok)
	}

	node := p.makeNodeAt(ast.Identifier, nameTok)
	p.arena.Get(node).Data = ast.IdentifierData{Name: nameTok.Lexeme}
	return node
}

func (p *Parser) parseArrayLiteral() ast.Index {
	lb := p.advance() // consume '['
	node := p.makeNodeAt(ast.ArrayLit, lb)

	if !p.check(token.RBracket) {
		for {
			elem := p.parseExpression()
			if elem != ast.NullNode {
				p.arena.AddChild(node, elem)
			}
			if !p.match(token.Comma) {
				break
			}
		}
	}

	p.consume(token.RBracket, "Expected ']' after array elements")
	return node
}

// parseIndexExpr parses `expr[index]`. The '[' has already been consumed.
func (p *Parser) parseIndexExpr(left ast.Index) ast.Index {
	lb := p.previous()
	node := p.makeNodeAt(ast.Index_, lb)
	p.arena.AddChild(node, left)

	idx := p.parseExpression()
	if idx != ast.NullNode {
		p.arena.AddChild(node, idx)
	}

	p.consume(token.RBracket, "Expected ']' after index expression")
	return node
}

func (p *Parser) parseGrouping() ast.Index {
	p.advance() // consume '('
	isClosure := false

	switch {
	case p.check(token.RParen):
		saved := p.current
		p.advance() // consume ')'
		if p.check(token.Arrow) {
			isClosure = true
		}
		p.current = saved

	case p.check(token.Identifier):
		saved := p.current
		looksLikeParams := true
		for !p.isAtEnd() && looksLikeParams {
			if !p.check(token.Identifier) {
				looksLikeParams = false
				break
			}
			p.advance()

			if p.check(token.Comma) {
				p.advance()
			} else if p.check(token.RParen) {
				p.advance()
				if p.check(token.Arrow) {
					isClosure = true
				}
				break
			} else {
				looksLikeParams = false
			}
		}
		p.current = saved
	}

	if isClosure {
		return p.parseClosure()
	}

	expr := p.parseExpression()
	p.consume(token.RParen, "Expected ')' after expression")
	return expr
}

// --- closures ---

// parseClosure parses `params) -> body`; the opening '(' is already consumed.
func (p *Parser) parseClosure() ast.Index {
	startTok := p.previous()
	node := p.makeNodeAt(ast.Closure, startTok)

	params := p.parseParamList()
	p.consume(token.RParen, "Expected ')' after parameters")
	p.consume(token.Arrow, "Expected '->' after closure parameters")

	body := p.parseClosureBody()

	p.addParamNodes(node, startTok, params)
	if body != ast.NullNode {
		p.arena.AddChild(node, body)
	}

	return node
}

// addParamNodes appends one Identifier (or ClosureParamData-carrying
// Identifier) node per param, in order, as children of node.
func (p *Parser) addParamNodes(node ast.Index, loc token.Token, params []parsedParam) {
	for _, param := range params {
		paramNode := p.arena.Alloc(ast.Identifier, loc.Location)
		if param.hasDefault {
			p.arena.Get(paramNode).Data = ast.ClosureParamData{
				Name: param.name, HasDefault: true, DefaultValue: param.defaultValue,
			}
		} else {
			p.arena.Get(paramNode).Data = ast.IdentifierData{Name: param.name}
		}
		p.arena.AddChild(node, paramNode)
	}
}

func (p *Parser) parseParamList() []parsedParam {
	var params []parsedParam

	if p.check(token.RParen) {
		return params
	}

	seenDefault := false

	for {
		if !p.check(token.Identifier) {
			p.error("Expected parameter name")
			break
		}
		nameTok := p.advance()

		param := parsedParam{name: nameTok.Lexeme}
		if p.match(token.Equals) {
			if !p.check(token.Number) {
				p.error("Default parameter value must be a number literal")
				break
			}
			numTok := p.advance()
			param.hasDefault = true
			param.defaultValue = numTok.Number.Value
			seenDefault = true
		} else if seenDefault {
			p.error("Required parameter cannot follow optional parameter")
			break
		}

		params = append(params, param)

		if !p.match(token.Comma) {
			break
		}
	}

	return params
}

// parseClosureBody greedily absorbs pipes and binary operators, or parses a
// braced block.
func (p *Parser) parseClosureBody() ast.Index {
	if p.check(token.LBrace) {
		return p.parseBlock()
	}
	return p.parseExpression()
}

func (p *Parser) parseBlock() ast.Index {
	brace := p.advance() // consume '{'
	node := p.makeNodeAt(ast.Block, brace)

	for !p.check(token.RBrace) && !p.isAtEnd() {
		stmt := p.parseStatement()
		if stmt != ast.NullNode {
			p.arena.AddChild(node, stmt)
		}
		if p.panicMode {
			p.synchronize()
		}
	}

	p.consume(token.RBrace, "Expected '}' after block")
	return node
}

// --- binary operators, pipe, method calls ---

func (p *Parser) parseBinary(left ast.Index, op token.Token) ast.Index {
	var binop ast.BinOp
	switch op.Type {
	case token.Plus:
		binop = ast.OpAdd
	case token.Minus:
		binop = ast.OpSub
	case token.Star:
		binop = ast.OpMul
	case token.Slash:
		binop = ast.OpDiv
	case token.Caret:
		binop = ast.OpPow
	default:
		p.error("Unknown binary operator")
		return left
	}

	nextPrec := p.getPrecedence(op.Type)
	if op.Type != token.Caret {
		// Left-associative: bind tighter on the right.
		nextPrec++
	}
	// Power (^) is right-associative: reuse the same precedence.

	right := p.parsePrecedence(nextPrec)

	node := p.makeNodeAt(ast.Call, op)
	p.arena.Get(node).Data = ast.IdentifierData{Name: binop.FuncName()}

	leftArg := p.arena.Alloc(ast.Argument, p.arena.Get(left).Location)
	p.arena.Get(leftArg).Data = ast.ArgumentData{}
	p.arena.AddChild(leftArg, left)
	p.arena.AddChild(node, leftArg)

	if right != ast.NullNode {
		rightArg := p.arena.Alloc(ast.Argument, p.arena.Get(right).Location)
		p.arena.Get(rightArg).Data = ast.ArgumentData{}
		p.arena.AddChild(rightArg, right)
		p.arena.AddChild(node, rightArg)
	}

	return node
}

func (p *Parser) parsePipe(left ast.Index, pipeTok token.Token) ast.Index {
	node := p.makeNodeAt(ast.Pipe, pipeTok)

	right := p.parsePrecedence(precAddition)

	p.arena.AddChild(node, left)
	if right != ast.NullNode {
		p.arena.AddChild(node, right)
	}

	return node
}

func (p *Parser) parseMethodCall(left ast.Index) ast.Index {
	dotTok := p.previous()

	if !p.check(token.Identifier) {
		p.error("Expected method name after '.'")
		return left
	}

	methodName := p.advance()
	node := p.makeNodeAt(ast.MethodCall, dotTok)
	p.arena.Get(node).Data = ast.IdentifierData{Name: methodName.Lexeme}

	p.arena.AddChild(node, left)

	p.consume(token.LParen, "Expected '(' after method name")
	if !p.check(token.RParen) {
		for _, arg := range p.parseArgumentList() {
			p.arena.AddChild(node, arg)
		}
	}
	p.consume(token.RParen, "Expected ')' after arguments")

	return node
}

// --- function calls ---

func (p *Parser) parseCall(nameTok token.Token) ast.Index {
	node := p.makeNodeAt(ast.Call, nameTok)
	p.arena.Get(node).Data = ast.IdentifierData{Name: nameTok.Lexeme}

	p.consume(token.LParen, "Expected '(' after function name")
	if !p.check(token.RParen) {
		for _, arg := range p.parseArgumentList() {
			p.arena.AddChild(node, arg)
		}
	}
	p.consume(token.RParen, "Expected ')' after arguments")

	return node
}

func (p *Parser) parseArgumentList() []ast.Index {
	var args []ast.Index
	for {
		arg := p.parseArgument()
		if arg != ast.NullNode {
			args = append(args, arg)
		}
		if !p.match(token.Comma) {
			break
		}
	}
	return args
}

func (p *Parser) parseArgument() ast.Index {
	start := p.current_()
	node := p.makeNodeAt(ast.Argument, start)

	if p.check(token.Identifier) {
		saved := p.current
		name := p.advance()

		if p.check(token.Colon) {
			p.advance() // consume ':'
			p.arena.Get(node).Data = ast.ArgumentData{Name: name.Lexeme}
			value := p.parseExpression()
			if value != ast.NullNode {
				p.arena.AddChild(node, value)
			}
			return node
		}

		p.current = saved
	}

	p.arena.Get(node).Data = ast.ArgumentData{}
	value := p.parseExpression()
	if value != ast.NullNode {
		p.arena.AddChild(node, value)
	}
	return node
}

// --- mini-notation literals ---

func (p *Parser) parseMiniLiteral() ast.Index {
	kwTok := p.advance()
	var patType ast.PatternType

	switch kwTok.Type {
	case token.Pat:
		patType = ast.PatPat
	case token.Seq:
		patType = ast.PatSeq
	case token.Timeline:
		patType = ast.PatTimeline
	case token.Note:
		patType = ast.PatNote
	default:
		p.error("Expected pattern keyword")
		return ast.NullNode
	}

	node := p.makeNodeAt(ast.MiniLiteral, kwTok)
	p.arena.Get(node).Data = ast.PatternData{PatternType: patType}

	p.consume(token.LParen, "Expected '(' after pattern keyword")

	if !p.check(token.String) {
		p.error("Expected string for mini-notation pattern")
		return node
	}

	patternStr := p.parseString()

	// Per spec, the pattern string is mini-parsed right here rather than
	// deferred: the mini-notation subtree, not the raw string, is child 0
	// of the MiniLiteral node.
	strNode := p.arena.Get(patternStr)
	sampleOnly := patType == ast.PatNote
	miniRoot, miniDiags := miniparser.Parse(strNode.AsString().Value, p.arena, strNode.Location, sampleOnly)
	p.diags.Append(miniDiags)
	p.arena.AddChild(node, miniRoot)

	if p.match(token.Comma) {
		if p.check(token.LParen) {
			p.advance() // consume '('
			closure := p.parseClosure()
			p.arena.AddChild(node, closure)
		} else {
			p.error("Expected closure after comma in pattern")
		}
	}

	p.consume(token.RParen, "Expected ')' after pattern arguments")
	return node
}

// --- match expressions ---
//
// `match` is a compile-time branch, not a runtime construct (see
// internal/codegen): the scrutinee must resolve to a literal at the call
// site, and only the selected arm's body is ever compiled. Arms here are
// `pattern: body` or the wildcard `_: body`; arm guards (`&&`) are modeled
// in the AST (MatchArmData.HasGuard/GuardNode) for shape parity with the
// node's data, but — matching how the pattern was always compiled
// end-to-end — the parser never produces one, since no lexer token exists
// for a logical-and operator.

func (p *Parser) parseMatchExpr() ast.Index {
	matchTok := p.advance() // consume 'match'
	node := p.makeNodeAt(ast.MatchExpr, matchTok)

	hasScrutinee := false
	if p.check(token.LParen) {
		hasScrutinee = true
		p.advance()
		scrutinee := p.parseExpression()
		p.consume(token.RParen, "Expected ')' after match scrutinee")
		if scrutinee != ast.NullNode {
			p.arena.AddChild(node, scrutinee)
		}
	}
	p.arena.Get(node).Data = ast.MatchExprData{HasScrutinee: hasScrutinee}

	p.consume(token.LBrace, "Expected '{' after match")
	for !p.check(token.RBrace) && !p.isAtEnd() {
		arm := p.parseMatchArm()
		if arm != ast.NullNode {
			p.arena.AddChild(node, arm)
		}
		if !p.check(token.RBrace) {
			p.match(token.Comma)
		}
		if p.panicMode {
			p.synchronize()
		}
	}
	p.consume(token.RBrace, "Expected '}' after match arms")

	return node
}

// parseMatchArm parses one `pattern: body` or `_: body` arm.
func (p *Parser) parseMatchArm() ast.Index {
	startTok := p.current_()
	node := p.makeNodeAt(ast.MatchArm, startTok)

	isWildcard := false
	if p.check(token.Underscore) {
		p.advance()
		isWildcard = true
	} else {
		pattern := p.parseMatchPattern()
		if pattern != ast.NullNode {
			p.arena.AddChild(node, pattern)
		}
	}

	p.consume(token.Colon, "Expected ':' after match pattern")

	body := p.parseExpression()
	if body != ast.NullNode {
		p.arena.AddChild(node, body)
	}

	p.arena.Get(node).Data = ast.MatchArmData{IsWildcard: isWildcard, HasGuard: false, GuardNode: ast.NullNode}
	return node
}

// parseMatchPattern parses a compile-time-comparable literal: number,
// string, or boolean.
func (p *Parser) parseMatchPattern() ast.Index {
	switch p.current_().Type {
	case token.Number:
		return p.parseNumber()
	case token.String:
		return p.parseString()
	case token.True, token.False:
		return p.parseBool()
	default:
		p.error("Expected a literal match pattern")
		return ast.NullNode
	}
}

// --- precedence helpers ---

func (p *Parser) getPrecedence(t token.Type) precedence {
	switch t {
	case token.Pipe:
		return precPipe
	case token.Plus, token.Minus:
		return precAddition
	case token.Star, token.Slash:
		return precMultiplication
	case token.Caret:
		return precPower
	default:
		return precNone
	}
}

func (p *Parser) isInfixOperator(t token.Type) bool {
	switch t {
	case token.Pipe, token.Plus, token.Minus, token.Star, token.Slash, token.Caret:
		return true
	default:
		return false
	}
}
