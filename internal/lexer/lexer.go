// Package lexer tokenizes Akkado source text for the main-language parser.
//
// The lexer produces the full token stream in one pass (simpler error
// recovery than a streaming API), carries precise line/column/offset spans
// for LSP use, and never halts on malformed input: it emits an Error token
// plus a diagnostic and keeps scanning so later phases can report more than
// one problem per run.
package lexer

import (
	"strconv"

	"github.com/akkadolang/cedarc/internal/diag"
	"github.com/akkadolang/cedarc/internal/musictheory"
	"github.com/akkadolang/cedarc/internal/source"
	"github.com/akkadolang/cedarc/internal/token"
)

// Lexer scans one source file into tokens.
type Lexer struct {
	src      string
	filename string
	diags    *diag.Store

	start  uint32
	cur    uint32
	line   uint32
	column uint32

	tokLine   uint32
	tokColumn uint32
}

// New creates a lexer over src. filename is used only for diagnostics.
func New(src, filename string) *Lexer {
	return &Lexer{
		src:      src,
		filename: filename,
		diags:    diag.NewStore(filename),
		line:     1,
		column:   1,
	}
}

// Diagnostics returns diagnostics accumulated during lexing.
func (l *Lexer) Diagnostics() []diag.Diagnostic { return l.diags.All() }

// HasErrors reports whether lexing produced any error diagnostic.
func (l *Lexer) HasErrors() bool { return l.diags.HasErrors() }

// LexAll scans the entire source and returns every token, ending with an
// Eof token.
func (l *Lexer) LexAll() []token.Token {
	tokens := make([]token.Token, 0, len(l.src)/4+1)
	for {
		tok := l.lexToken()
		tokens = append(tokens, tok)
		if tok.Type == token.Eof {
			break
		}
	}
	return tokens
}

func (l *Lexer) isAtEnd() bool { return l.cur >= uint32(len(l.src)) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekNext() byte {
	if l.cur+1 >= uint32(len(l.src)) {
		return 0
	}
	return l.src[l.cur+1]
}

func (l *Lexer) advance() byte {
	c := l.src[l.cur]
	l.cur++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.src[l.cur] != expected {
		return false
	}
	l.advance()
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphanumeric(c byte) bool { return isAlpha(c) || isDigit(c) }

func (l *Lexer) currentLocation() source.Location {
	return source.Location{
		Line:   l.tokLine,
		Column: l.tokColumn,
		Offset: l.start,
		Length: l.cur - l.start,
	}
}

func (l *Lexer) makeToken(typ token.Type) token.Token {
	return token.Token{
		Type:     typ,
		Location: l.currentLocation(),
		Lexeme:   l.src[l.start:l.cur],
	}
}

func (l *Lexer) errorToken(message string) token.Token {
	loc := l.currentLocation()
	l.diags.Emit(diag.Error, "L001", message, loc)
	return token.Token{
		Type:     token.Error,
		Location: loc,
		Lexeme:   l.src[l.start:l.cur],
		Text:     message,
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if l.peekNext() == '/' {
				l.skipLineComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	l.advance()
	l.advance()
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) lexToken() token.Token {
	l.skipWhitespace()

	l.start = l.cur
	l.tokLine = l.line
	l.tokColumn = l.column

	if l.isAtEnd() {
		return l.makeToken(token.Eof)
	}

	c := l.advance()

	if isAlpha(c) {
		if c == '_' && !isAlphanumeric(l.peek()) {
			return l.makeToken(token.Underscore)
		}
		return l.lexIdentifier()
	}

	if isDigit(c) {
		return l.lexNumber()
	}

	switch c {
	case '(':
		return l.makeToken(token.LParen)
	case ')':
		return l.makeToken(token.RParen)
	case '[':
		return l.makeToken(token.LBracket)
	case ']':
		return l.makeToken(token.RBracket)
	case '{':
		return l.makeToken(token.LBrace)
	case '}':
		return l.makeToken(token.RBrace)
	case ',':
		return l.makeToken(token.Comma)
	case ':':
		return l.makeToken(token.Colon)
	case ';':
		return l.makeToken(token.Semicolon)
	case '%':
		return l.makeToken(token.Hole)
	case '@':
		return l.makeToken(token.At)
	case '~':
		return l.makeToken(token.Tilde)
	case '^':
		return l.makeToken(token.Caret)
	case '.':
		return l.makeToken(token.Dot)
	case '+':
		return l.makeToken(token.Plus)
	case '*':
		return l.makeToken(token.Star)
	case '/':
		return l.makeToken(token.Slash)
	case '-':
		if l.match('>') {
			return l.makeToken(token.Arrow)
		}
		if isDigit(l.peek()) {
			return l.lexNumber()
		}
		return l.makeToken(token.Minus)
	case '|':
		if l.match('>') {
			return l.makeToken(token.Pipe)
		}
		return l.errorToken("expected '>' after '|' for pipe operator")
	case '=':
		if l.match('=') {
			return l.makeToken(token.EqualEqual)
		}
		return l.makeToken(token.Equals)
	case '!':
		if l.match('=') {
			return l.makeToken(token.BangEqual)
		}
		return l.makeToken(token.Bang)
	case '?':
		return l.makeToken(token.Question)
	case '<':
		if l.match('=') {
			return l.makeToken(token.LessEqual)
		}
		return l.makeToken(token.Less)
	case '>':
		if l.match('=') {
			return l.makeToken(token.GreaterEqual)
		}
		return l.makeToken(token.Greater)
	case '\'':
		return l.lexQuoted(c)
	case '"', '`':
		return l.lexString(c)
	default:
		return l.errorToken("unexpected character")
	}
}

func (l *Lexer) lexNumber() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	hasDot := false
	if l.peek() == '.' && isDigit(l.peekNext()) {
		hasDot = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	text := l.src[l.start:l.cur]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return l.errorToken("invalid number")
	}
	tok := l.makeToken(token.Number)
	tok.Number = token.NumericValue{Value: value, IsInteger: !hasDot}
	return tok
}

func (l *Lexer) lexString(quote byte) token.Token {
	var buf []byte
	for !l.isAtEnd() && l.peek() != quote {
		c := l.peek()
		if c == '\n' {
			buf = append(buf, c)
			l.advance()
			continue
		}
		if c == '\\' {
			l.advance()
			if l.isAtEnd() {
				return l.errorToken("unterminated string escape")
			}
			escaped := l.advance()
			switch escaped {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			case '\\':
				buf = append(buf, '\\')
			case '"':
				buf = append(buf, '"')
			case '\'':
				buf = append(buf, '\'')
			case '`':
				buf = append(buf, '`')
			default:
				return l.errorToken("invalid escape sequence")
			}
		} else {
			buf = append(buf, l.advance())
		}
	}
	if l.isAtEnd() {
		return l.errorToken("unterminated string")
	}
	l.advance() // closing quote
	tok := l.makeToken(token.String)
	tok.Text = string(buf)
	return tok
}

// lexQuoted handles single-quoted literals, which may be a pitch ('c4'),
// a chord ('c4:maj'), or a plain string if neither shape matches.
func (l *Lexer) lexQuoted(quote byte) token.Token {
	contentStart := l.cur
	for !l.isAtEnd() && l.peek() != quote && l.peek() != '\n' {
		l.advance()
	}
	if l.isAtEnd() || l.peek() != quote {
		// Not a simple single-line run (multi-line or unterminated):
		// fall back to general string scanning from the same start.
		l.cur = contentStart
		return l.lexString(quote)
	}
	content := l.src[contentStart:l.cur]
	l.advance() // closing quote

	if root, intervals, ok := musictheory.ParseChordText(content); ok {
		tok := l.makeToken(token.ChordLit)
		tok.Chord = token.ChordValue{RootMIDI: root, Intervals: intervals}
		return tok
	}
	if midi, ok := musictheory.ParsePitchText(content); ok {
		tok := l.makeToken(token.PitchLit)
		tok.Pitch = token.PitchValue{MIDINote: midi}
		return tok
	}
	tok := l.makeToken(token.String)
	tok.Text = content
	return tok
}

func (l *Lexer) lexIdentifier() token.Token {
	for isAlphanumeric(l.peek()) {
		l.advance()
	}
	text := l.src[l.start:l.cur]
	if typ, ok := token.Keywords[text]; ok {
		return l.makeToken(typ)
	}
	tok := l.makeToken(token.Identifier)
	tok.Text = text
	return tok
}

// LexAll is a convenience function equivalent to New(src, filename).LexAll(),
// additionally returning accumulated diagnostics.
func LexAll(src, filename string) ([]token.Token, []diag.Diagnostic) {
	l := New(src, filename)
	tokens := l.LexAll()
	return tokens, l.Diagnostics()
}
