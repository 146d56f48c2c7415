package parser

import (
	"testing"

	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, src string) (ast.AST, *Parser) {
	t.Helper()
	tokens, lexDiags := lexer.LexAll(src, "<test>")
	require.Empty(t, lexDiags)
	p := New(tokens, "<test>")
	tree := p.Parse()
	return tree, p
}

func firstChild(tree ast.AST, idx ast.Index) ast.Index {
	return tree.Arena.Get(idx).FirstChild
}

func TestParseSimpleCall(t *testing.T) {
	tree, p := parseSource(t, "saw(440)")
	require.False(t, p.HasErrors())

	call := firstChild(tree, tree.Root)
	node := tree.Arena.Get(call)
	assert.Equal(t, ast.Call, node.Type)
	assert.Equal(t, "saw", node.AsIdentifier().Name)
}

func TestParseAssignment(t *testing.T) {
	tree, p := parseSource(t, "freq = 440")
	require.False(t, p.HasErrors())

	assign := firstChild(tree, tree.Root)
	node := tree.Arena.Get(assign)
	assert.Equal(t, ast.Assignment, node.Type)
	assert.Equal(t, "freq", node.AsIdentifier().Name)
}

func TestParseBinaryOpDesugarsToCall(t *testing.T) {
	tree, p := parseSource(t, "1 + 2")
	require.False(t, p.HasErrors())

	call := firstChild(tree, tree.Root)
	node := tree.Arena.Get(call)
	require.Equal(t, ast.Call, node.Type)
	assert.Equal(t, "add", node.AsIdentifier().Name)
	assert.Equal(t, 2, tree.Arena.ChildCount(call))
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 should parse as 2 ^ (3 ^ 2): outer call's second argument
	// is itself a pow call.
	tree, p := parseSource(t, "2 ^ 3 ^ 2")
	require.False(t, p.HasErrors())

	outer := firstChild(tree, tree.Root)
	args := tree.Arena.Children(outer)
	require.Len(t, args, 2)

	rightArg := tree.Arena.Get(args[1])
	rightExpr := tree.Arena.Get(rightArg.FirstChild)
	require.Equal(t, ast.Call, rightExpr.Type)
	assert.Equal(t, "pow", rightExpr.AsIdentifier().Name)
}

func TestParsePipeHasTwoChildren(t *testing.T) {
	tree, p := parseSource(t, "saw(440) |> lp(%, 800, 0.7)")
	require.False(t, p.HasErrors())

	pipe := firstChild(tree, tree.Root)
	node := tree.Arena.Get(pipe)
	require.Equal(t, ast.Pipe, node.Type)
	assert.Equal(t, 2, tree.Arena.ChildCount(pipe))
}

func TestParseClosureWithDefaults(t *testing.T) {
	// Default-valued parameters are only reachable through a context that
	// already knows a closure must follow (post(), a pattern's second
	// argument) — parse_grouping's bare '(' lookahead only recognizes a
	// plain identifier list, per spec.md §4.3, so a defaulted param list
	// is exercised via post() here rather than as a standalone expression.
	tree, p := parseSource(t, "post((x, y = 2) -> x * y)")
	require.False(t, p.HasErrors())

	post := firstChild(tree, tree.Root)
	closure := firstChild(tree, post)
	node := tree.Arena.Get(closure)
	require.Equal(t, ast.Closure, node.Type)

	children := tree.Arena.Children(closure)
	require.Len(t, children, 3) // x, y, body

	yParam := tree.Arena.Get(children[1])
	data := yParam.AsClosureParam()
	assert.Equal(t, "y", data.Name)
	assert.True(t, data.HasDefault)
	assert.Equal(t, 2.0, data.DefaultValue)
}

func TestParseRequiredAfterDefaultIsError(t *testing.T) {
	_, p := parseSource(t, "post((x = 1, y) -> x)")
	assert.True(t, p.HasErrors())
}

func TestParseGroupingVersusClosureDisambiguation(t *testing.T) {
	tree, p := parseSource(t, "(1 + 2) * 3")
	require.False(t, p.HasErrors())

	call := firstChild(tree, tree.Root)
	node := tree.Arena.Get(call)
	assert.Equal(t, "mul", node.AsIdentifier().Name)
}

func TestParseArrayLiteral(t *testing.T) {
	tree, p := parseSource(t, "[1, 2, 3]")
	require.False(t, p.HasErrors())

	arr := firstChild(tree, tree.Root)
	node := tree.Arena.Get(arr)
	require.Equal(t, ast.ArrayLit, node.Type)
	assert.Equal(t, 3, tree.Arena.ChildCount(arr))
}

func TestParseIndexExpr(t *testing.T) {
	tree, p := parseSource(t, "notes[0]")
	require.False(t, p.HasErrors())

	idx := firstChild(tree, tree.Root)
	node := tree.Arena.Get(idx)
	require.Equal(t, ast.Index_, node.Type)
	assert.Equal(t, 2, tree.Arena.ChildCount(idx))
}

func TestParseFunctionDef(t *testing.T) {
	tree, p := parseSource(t, "fn square(x) -> x * x")
	require.False(t, p.HasErrors())

	fn := firstChild(tree, tree.Root)
	node := tree.Arena.Get(fn)
	require.Equal(t, ast.FunctionDef, node.Type)

	data := node.AsFunctionDef()
	assert.Equal(t, "square", data.Name)
	assert.Equal(t, 1, data.ParamCount)
	assert.Equal(t, 2, tree.Arena.ChildCount(fn)) // param + body
}

func TestParseMatchExprWithWildcard(t *testing.T) {
	tree, p := parseSource(t, `match(1) { 1: saw(440), _: sin(220) }`)
	require.False(t, p.HasErrors())

	m := firstChild(tree, tree.Root)
	node := tree.Arena.Get(m)
	require.Equal(t, ast.MatchExpr, node.Type)
	assert.True(t, node.AsMatchExpr().HasScrutinee)

	children := tree.Arena.Children(m)
	require.Len(t, children, 3) // scrutinee + 2 arms

	wildcardArm := tree.Arena.Get(children[2])
	require.Equal(t, ast.MatchArm, wildcardArm.Type)
	assert.True(t, wildcardArm.AsMatchArm().IsWildcard)
}

func TestParseMethodCall(t *testing.T) {
	tree, p := parseSource(t, "saw(440).gain(0.5)")
	require.False(t, p.HasErrors())

	call := firstChild(tree, tree.Root)
	node := tree.Arena.Get(call)
	require.Equal(t, ast.MethodCall, node.Type)
	assert.Equal(t, "gain", node.AsIdentifier().Name)
}

func TestParseNamedArgument(t *testing.T) {
	tree, p := parseSource(t, "adsr(attack: 0.1, decay: 0.2, sustain: 0.5, release: 0.3)")
	require.False(t, p.HasErrors())

	call := firstChild(tree, tree.Root)
	args := tree.Arena.Children(call)
	require.Len(t, args, 4)
	assert.Equal(t, "attack", tree.Arena.Get(args[0]).AsArgument().Name)
}

func TestParseMiniLiteral(t *testing.T) {
	tree, p := parseSource(t, `seq("bd sn bd sn")`)
	require.False(t, p.HasErrors())

	lit := firstChild(tree, tree.Root)
	node := tree.Arena.Get(lit)
	require.Equal(t, ast.MiniLiteral, node.Type)
	assert.Equal(t, ast.PatSeq, node.AsPattern().PatternType)

	// The pattern string is mini-parsed inline: child 0 is the parsed
	// MiniPattern subtree, not the raw string literal.
	patternRoot := firstChild(tree, lit)
	patternNode := tree.Arena.Get(patternRoot)
	require.Equal(t, ast.MiniPattern, patternNode.Type)
	assert.Equal(t, 4, tree.Arena.ChildCount(patternRoot))
}

func TestParseMiniLiteralNotePatternParsesChordAtoms(t *testing.T) {
	tree, p := parseSource(t, `note("Am C7")`)
	require.False(t, p.HasErrors())

	lit := firstChild(tree, tree.Root)
	patternRoot := firstChild(tree, lit)
	atoms := tree.Arena.Children(patternRoot)
	require.Len(t, atoms, 2)
	assert.Equal(t, ast.MiniAtomChord, tree.Arena.Get(atoms[0]).AsMiniAtom().Kind)
}

func TestParseUnknownFunctionCallProducesDeferredError(t *testing.T) {
	// The parser never rejects unknown callees — that's the analyzer's job.
	tree, p := parseSource(t, "unknown_fn(1)")
	require.False(t, p.HasErrors())

	call := firstChild(tree, tree.Root)
	assert.Equal(t, "unknown_fn", tree.Arena.Get(call).AsIdentifier().Name)
}

func TestParseErrorRecoverTerminatesAndReportsOneDiagnostic(t *testing.T) {
	// A missing closing paren puts the parser in panic mode; synchronize()
	// must still run to completion, and cascading errors are suppressed
	// until the next statement boundary.
	_, p := parseSource(t, "saw(\nfreq = 440")
	require.True(t, p.HasErrors())
	assert.Len(t, p.Diagnostics(), 1)
	assert.Equal(t, "P001", p.Diagnostics()[0].Code)
}

func TestParseErrorRecoverAllowsNextCleanStatement(t *testing.T) {
	// Once synchronize() finds a fresh statement boundary (a known leading
	// keyword), parsing resumes normally for the rest of the program.
	tree, p := parseSource(t, "sin(\npost((x) -> x)")
	require.True(t, p.HasErrors())

	stmts := tree.Arena.Children(tree.Root)
	require.Len(t, stmts, 2)
	assert.Equal(t, ast.PostStmt, tree.Arena.Get(stmts[1]).Type)
}
