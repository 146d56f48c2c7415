// Package miniparser implements the recursive-descent grammar for
// mini-notation pattern strings, the sublanguage inside pat(...),
// seq(...), timeline(...), and note(...) literals.
//
//	pattern    = { choice }
//	choice     = element { "|" element }
//	element    = atom [ euclidean ] [ modifiers ]
//	atom       = pitch | sample | chord | rest | group | sequence | polymeter
//	group      = "[" pattern "]"  |  polyrhythm = "[" choice { "," choice } "]"
//	sequence   = "<" pattern ">"
//	polymeter  = "{" pattern "}" [ "%" number ]
//	euclidean  = "(" number "," number [ "," number ] ")"
//	modifiers  = { "*" number | "/" number | ":" number | "@" number | "!" number | "?" number }
//
// It shares the main language's AST arena, producing MiniPattern/
// MiniAtom/MiniGroup/MiniSequence/MiniPolyrhythm/MiniPolymeter/
// MiniChoice/MiniEuclidean/MiniModified nodes.
package miniparser

import (
	"github.com/akkadolang/cedarc/internal/ast"
	"github.com/akkadolang/cedarc/internal/diag"
	"github.com/akkadolang/cedarc/internal/minilexer"
	"github.com/akkadolang/cedarc/internal/minitoken"
	"github.com/akkadolang/cedarc/internal/source"
)

// Parser turns a scanned mini-notation token stream into an AST
// fragment rooted at a MiniPattern node.
type Parser struct {
	tokens  []minitoken.Token
	arena   *ast.Arena
	baseLoc source.Location
	diags   *diag.Store

	current int
}

// New creates a mini-notation parser over an already-lexed token
// stream, writing nodes into arena.
func New(tokens []minitoken.Token, arena *ast.Arena, baseLoc source.Location) *Parser {
	return &Parser{
		tokens:  tokens,
		arena:   arena,
		baseLoc: baseLoc,
		diags:   diag.NewStore("<pattern>"),
	}
}

func (p *Parser) Diagnostics() []diag.Diagnostic { return p.diags.All() }
func (p *Parser) HasErrors() bool                { return p.diags.HasErrors() }

// Parse scans the whole token stream into one MiniPattern node.
func (p *Parser) Parse() ast.Index {
	if len(p.tokens) == 0 || (len(p.tokens) == 1 && p.tokens[0].IsEOF()) {
		return p.arena.Alloc(ast.MiniPattern, p.baseLoc)
	}
	return p.parsePattern()
}

// --- token navigation ---

func (p *Parser) current_() minitoken.Token {
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // Eof
	}
	return p.tokens[p.current]
}

func (p *Parser) previous() minitoken.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool { return p.current_().Type == minitoken.Eof }

func (p *Parser) check(t minitoken.Type) bool { return p.current_().Type == t }

func (p *Parser) match(t minitoken.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) advance() minitoken.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) consume(t minitoken.Type, message string) minitoken.Token {
	if p.check(t) {
		return p.advance()
	}
	p.error(message)
	return p.current_()
}

// --- error handling ---

func (p *Parser) error(message string) { p.errorAt(p.current_(), message) }

func (p *Parser) errorAt(tok minitoken.Token, message string) {
	p.diags.Emit(diag.Error, "MP01", message, tok.Location)
}

// --- node creation ---

func (p *Parser) makeNode(typ ast.Type, tok minitoken.Token) ast.Index {
	return p.arena.Alloc(typ, tok.Location)
}

// --- pattern parsing ---

func (p *Parser) parsePattern() ast.Index {
	root := p.arena.Alloc(ast.MiniPattern, p.current_().Location)
	for !p.isAtEnd() {
		elem := p.parseChoice()
		if elem == ast.NullNode {
			break
		}
		p.arena.AddChild(root, elem)
	}
	return root
}

func (p *Parser) parseChoice() ast.Index {
	left := p.parseElement()
	if left == ast.NullNode {
		return ast.NullNode
	}
	if !p.check(minitoken.Pipe) {
		return left
	}

	choice := p.makeNode(ast.MiniChoice, p.previous())
	p.arena.AddChild(choice, left)

	for p.match(minitoken.Pipe) {
		right := p.parseElement()
		if right == ast.NullNode {
			p.error("Expected element after '|'")
			break
		}
		p.arena.AddChild(choice, right)
	}

	return choice
}

func (p *Parser) parseElement() ast.Index {
	atom := p.parseAtom()
	if atom == ast.NullNode {
		return ast.NullNode
	}

	if p.check(minitoken.LParen) {
		atom = p.parseEuclidean(atom)
	}

	switch p.current_().Type {
	case minitoken.Star, minitoken.Slash, minitoken.Colon, minitoken.At, minitoken.Bang, minitoken.Question:
		atom = p.parseModifiers(atom)
	}

	return atom
}

func (p *Parser) isAtomStart() bool {
	switch p.current_().Type {
	case minitoken.PitchToken, minitoken.SampleToken, minitoken.ChordToken, minitoken.Rest,
		minitoken.LBracket, minitoken.LAngle, minitoken.LBrace:
		return true
	}
	return false
}

func (p *Parser) parseAtom() ast.Index {
	if p.match(minitoken.PitchToken) {
		return p.parsePitchAtom(p.previous())
	}
	if p.match(minitoken.SampleToken) {
		return p.parseSampleAtom(p.previous())
	}
	if p.match(minitoken.ChordToken) {
		return p.parseChordAtom(p.previous())
	}
	if p.match(minitoken.Rest) {
		return p.parseRest()
	}
	if p.check(minitoken.LBracket) {
		return p.parseGroup()
	}
	if p.check(minitoken.LAngle) {
		return p.parseSequence()
	}
	if p.check(minitoken.LBrace) {
		return p.parsePolymeter()
	}
	return ast.NullNode
}

func (p *Parser) parsePitchAtom(tok minitoken.Token) ast.Index {
	node := p.makeNode(ast.MiniAtom, tok)
	pitch := tok.AsPitch()
	p.arena.Get(node).Data = ast.MiniAtomData{
		Kind:     ast.MiniAtomPitch,
		MIDINote: pitch.MIDINote,
	}
	return node
}

func (p *Parser) parseSampleAtom(tok minitoken.Token) ast.Index {
	node := p.makeNode(ast.MiniAtom, tok)
	sample := tok.AsSample()
	p.arena.Get(node).Data = ast.MiniAtomData{
		Kind:          ast.MiniAtomSample,
		SampleName:    sample.Name,
		SampleVariant: sample.Variant,
	}
	return node
}

// parseChordAtom handles ChordToken, the sample-only-mode counterpart
// of parsePitchAtom: note()'s progression patterns lex chord symbols
// ("Am", "C7") as ChordToken rather than attempting pitch detection.
func (p *Parser) parseChordAtom(tok minitoken.Token) ast.Index {
	node := p.makeNode(ast.MiniAtom, tok)
	chord := tok.AsChord()
	p.arena.Get(node).Data = ast.MiniAtomData{
		Kind:           ast.MiniAtomChord,
		ChordRootMIDI:  chord.RootMIDI,
		ChordIntervals: chord.Intervals,
	}
	return node
}

func (p *Parser) parseRest() ast.Index {
	node := p.makeNode(ast.MiniAtom, p.previous())
	p.arena.Get(node).Data = ast.MiniAtomData{Kind: ast.MiniAtomRest}
	return node
}

func (p *Parser) parseGroup() ast.Index {
	open := p.advance() // consume '['

	var elements []ast.Index
	isPolyrhythm := false

	if !p.isAtEnd() && !p.check(minitoken.RBracket) {
		first := p.parseChoice()
		if first != ast.NullNode {
			elements = append(elements, first)
		}

		if p.check(minitoken.Comma) {
			isPolyrhythm = true
			for p.match(minitoken.Comma) {
				elem := p.parseChoice()
				if elem == ast.NullNode {
					p.error("Expected element after ','")
					break
				}
				elements = append(elements, elem)
			}
		} else {
			for !p.isAtEnd() && !p.check(minitoken.RBracket) {
				elem := p.parseChoice()
				if elem == ast.NullNode {
					break
				}
				elements = append(elements, elem)
			}
		}
	}

	p.consume(minitoken.RBracket, "Expected ']' after group")

	typ := ast.MiniGroup
	if isPolyrhythm {
		typ = ast.MiniPolyrhythm
	}
	node := p.makeNode(typ, open)
	for _, elem := range elements {
		p.arena.AddChild(node, elem)
	}
	return node
}

func (p *Parser) parseSequence() ast.Index {
	open := p.advance() // consume '<'
	node := p.makeNode(ast.MiniSequence, open)

	for !p.isAtEnd() && !p.check(minitoken.RAngle) {
		elem := p.parseChoice()
		if elem == ast.NullNode {
			break
		}
		p.arena.AddChild(node, elem)
	}

	p.consume(minitoken.RAngle, "Expected '>' after sequence")
	return node
}

func (p *Parser) parsePolymeter() ast.Index {
	open := p.advance() // consume '{'
	node := p.makeNode(ast.MiniPolymeter, open)

	for !p.isAtEnd() && !p.check(minitoken.RBrace) {
		elem := p.parseChoice()
		if elem == ast.NullNode {
			break
		}
		p.arena.AddChild(node, elem)
	}

	p.consume(minitoken.RBrace, "Expected '}' after polymeter")

	var stepCount uint8
	if p.match(minitoken.Percent) {
		if !p.check(minitoken.Number) {
			p.error("Expected step count after '%'")
		} else {
			stepCount = uint8(p.current_().AsNumber())
			p.advance()
		}
	}

	p.arena.Get(node).Data = ast.MiniPolymeterData{StepCount: stepCount}
	return node
}

func (p *Parser) parseEuclidean(atom ast.Index) ast.Index {
	open := p.advance() // consume '('

	if !p.match(minitoken.Number) {
		p.error("Expected number for euclidean hits")
		return atom
	}
	hits := p.previous().AsNumber()

	p.consume(minitoken.Comma, "Expected ',' after euclidean hits")

	if !p.match(minitoken.Number) {
		p.error("Expected number for euclidean steps")
		return atom
	}
	steps := p.previous().AsNumber()

	var rotation float64
	if p.match(minitoken.Comma) {
		if !p.match(minitoken.Number) {
			p.error("Expected number for euclidean rotation")
		} else {
			rotation = p.previous().AsNumber()
		}
	}

	p.consume(minitoken.RParen, "Expected ')' after euclidean parameters")

	node := p.makeNode(ast.MiniEuclidean, open)
	p.arena.Get(node).Data = ast.MiniEuclideanData{
		Hits:     uint8(hits),
		Steps:    uint8(steps),
		Rotation: uint8(rotation),
	}
	p.arena.AddChild(node, atom)
	return node
}

func (p *Parser) parseModifiers(atom ast.Index) ast.Index {
	for {
		var modType ast.MiniModifierType
		hasModifier := true

		switch {
		case p.match(minitoken.Star):
			modType = ast.ModSpeed
		case p.match(minitoken.Slash):
			modType = ast.ModSlow
		case p.match(minitoken.Colon):
			modType = ast.ModDuration
		case p.match(minitoken.At):
			modType = ast.ModWeight
		case p.match(minitoken.Bang):
			modType = ast.ModRepeat
		case p.match(minitoken.Question):
			modType = ast.ModChance
		default:
			hasModifier = false
		}

		if !hasModifier {
			break
		}

		value := float32(1.0)
		if p.check(minitoken.Number) {
			p.advance()
			value = float32(p.previous().AsNumber())
		} else {
			switch modType {
			case ast.ModRepeat:
				value = 2.0 // ! defaults to 2 repeats
			case ast.ModChance:
				value = 0.5 // ? defaults to 50% chance
			default:
				p.error("Expected number after modifier")
			}
		}

		modTok := p.previous()
		modified := p.makeNode(ast.MiniModified, modTok)
		p.arena.Get(modified).Data = ast.MiniModifierData{
			ModifierType: modType,
			Value:        value,
		}
		p.arena.AddChild(modified, atom)
		atom = modified
	}

	return atom
}

// Parse lexes pattern with minilexer and parses it into arena, rooted
// at base, returning the root MiniPattern node and every diagnostic
// from both phases. sampleOnly is forwarded to the lexer (note()'s
// chord-progression patterns set it so bare words parse as chords
// rather than pitches).
func Parse(pattern string, arena *ast.Arena, base source.Location, sampleOnly bool) (ast.Index, []diag.Diagnostic) {
	lex := minilexer.New(pattern, base, sampleOnly)
	tokens := lex.LexAll()

	parser := New(tokens, arena, base)
	root := parser.Parse()

	all := append([]diag.Diagnostic{}, lex.Diagnostics()...)
	all = append(all, parser.Diagnostics()...)
	return root, all
}
