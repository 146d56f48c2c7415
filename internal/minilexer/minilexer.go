// Package minilexer tokenizes mini-notation pattern strings found inside
// pat(...), seq(...), timeline(...), and note(...) literals.
package minilexer

import (
	"strconv"
	"strings"

	"github.com/akkadolang/cedarc/internal/diag"
	"github.com/akkadolang/cedarc/internal/minitoken"
	"github.com/akkadolang/cedarc/internal/musictheory"
	"github.com/akkadolang/cedarc/internal/source"
)

var noteSemitones = [...]int{9, 11, 0, 2, 4, 5, 7} // a, b, c, d, e, f, g

// Lexer scans one mini-notation pattern string into tokens. baseLoc is the
// location of the pattern string in the enclosing source file, used to
// translate in-pattern offsets back to file-relative line/column/offset.
type Lexer struct {
	pattern    string
	baseLoc    source.Location
	sampleOnly bool // when true, alphanumeric runs are samples/chords, never pitches
	diags      *diag.Store

	start  uint32
	cur    uint32
	column uint32
}

// New creates a mini-notation lexer. sampleOnly treats every
// alphanumeric run as a sample or (if it parses as a chord symbol) a
// chord token rather than attempting pitch detection — used for note()
// chord-progression patterns where "C7" means a chord, not pitch C
// octave 7.
func New(pattern string, baseLoc source.Location, sampleOnly bool) *Lexer {
	return &Lexer{
		pattern:    pattern,
		baseLoc:    baseLoc,
		sampleOnly: sampleOnly,
		diags:      diag.NewStore("<pattern>"),
		column:     1,
	}
}

func (l *Lexer) Diagnostics() []diag.Diagnostic { return l.diags.All() }
func (l *Lexer) HasErrors() bool                { return l.diags.HasErrors() }

// LexAll scans the entire pattern and returns every token, ending with Eof.
func (l *Lexer) LexAll() []minitoken.Token {
	tokens := make([]minitoken.Token, 0, len(l.pattern)/2+1)
	for {
		tok := l.lexToken()
		tokens = append(tokens, tok)
		if tok.Type == minitoken.Eof {
			break
		}
	}
	return tokens
}

func (l *Lexer) isAtEnd() bool { return l.cur >= uint32(len(l.pattern)) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.pattern[l.cur]
}

func (l *Lexer) peekNext() byte {
	if l.cur+1 >= uint32(len(l.pattern)) {
		return 0
	}
	return l.pattern[l.cur+1]
}

func (l *Lexer) advance() byte {
	c := l.pattern[l.cur]
	l.cur++
	l.column++
	return c
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
func isPitchLetter(c byte) bool {
	return (c >= 'a' && c <= 'g') || (c >= 'A' && c <= 'G')
}
func isAccidental(c byte) bool { return c == '#' || c == 'b' }
func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

func (l *Lexer) currentLocation() source.Location {
	return source.Location{
		Line:   l.baseLoc.Line,
		Column: l.baseLoc.Column + l.start,
		Offset: l.baseLoc.Offset + l.start,
		Length: l.cur - l.start,
	}
}

func (l *Lexer) makeToken(typ minitoken.Type) minitoken.Token {
	return minitoken.Token{
		Type:     typ,
		Location: l.currentLocation(),
		Lexeme:   l.pattern[l.start:l.cur],
	}
}

func (l *Lexer) errorToken(message string) minitoken.Token {
	loc := l.currentLocation()
	l.diags.Emit(diag.Error, "M001", message, loc)
	return minitoken.Token{
		Type:     minitoken.Error,
		Location: loc,
		Lexeme:   l.pattern[l.start:l.cur],
		Error:    message,
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() && isWhitespace(l.peek()) {
		l.advance()
	}
}

// looksLikePitch checks [a-gA-G][#b]?[0-9]* followed by a delimiter,
// without consuming input.
func (l *Lexer) looksLikePitch() bool {
	if l.sampleOnly || !isPitchLetter(l.peek()) {
		return false
	}
	pos := l.cur + 1
	n := uint32(len(l.pattern))
	if pos < n && isAccidental(l.pattern[pos]) {
		pos++
	}
	for pos < n && isDigit(l.pattern[pos]) {
		pos++
	}
	if pos >= n {
		return true
	}
	next := l.pattern[pos]
	switch next {
	case ' ', '\t', '\r', '\n', '*', '/', '@', '!', '?', '%',
		'[', ']', '<', '>', '(', ')', '{', '}', ',', '|', ':':
		return true
	}
	return false
}

func (l *Lexer) lexToken() minitoken.Token {
	l.skipWhitespace()
	l.start = l.cur

	if l.isAtEnd() {
		return l.makeToken(minitoken.Eof)
	}

	c := l.peek()

	if c == '_' {
		l.advance()
		return l.makeToken(minitoken.Rest)
	}

	if l.looksLikePitch() || isAlpha(c) {
		return l.lexPitchOrSample()
	}

	if isDigit(c) || (c == '.' && isDigit(l.peekNext())) {
		return l.lexNumber()
	}

	l.advance()
	switch c {
	case '~':
		return l.makeToken(minitoken.Rest)
	case '[':
		return l.makeToken(minitoken.LBracket)
	case ']':
		return l.makeToken(minitoken.RBracket)
	case '<':
		return l.makeToken(minitoken.LAngle)
	case '>':
		return l.makeToken(minitoken.RAngle)
	case '(':
		return l.makeToken(minitoken.LParen)
	case ')':
		return l.makeToken(minitoken.RParen)
	case '{':
		return l.makeToken(minitoken.LBrace)
	case '}':
		return l.makeToken(minitoken.RBrace)
	case ',':
		return l.makeToken(minitoken.Comma)
	case '*':
		return l.makeToken(minitoken.Star)
	case '/':
		return l.makeToken(minitoken.Slash)
	case ':':
		return l.makeToken(minitoken.Colon)
	case '@':
		return l.makeToken(minitoken.At)
	case '!':
		return l.makeToken(minitoken.Bang)
	case '?':
		return l.makeToken(minitoken.Question)
	case '%':
		return l.makeToken(minitoken.Percent)
	case '|':
		return l.makeToken(minitoken.Pipe)
	default:
		return l.errorToken("unexpected character in pattern")
	}
}

func (l *Lexer) lexNumber() minitoken.Token {
	hasDot := false
	if l.peek() == '.' {
		hasDot = true
		l.advance()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	if !hasDot && l.peek() == '.' && isDigit(l.peekNext()) {
		hasDot = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	text := l.pattern[l.start:l.cur]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return l.errorToken("invalid number in pattern")
	}
	tok := l.makeToken(minitoken.Number)
	tok.Number = value
	return tok
}

func (l *Lexer) lexPitchOrSample() minitoken.Token {
	for !l.isAtEnd() {
		c := l.peek()
		if isAlpha(c) || isDigit(c) || c == '#' {
			l.advance()
		} else {
			break
		}
	}
	text := l.pattern[l.start:l.cur]

	if !l.sampleOnly && len(text) >= 1 && isPitchLetter(text[0]) {
		if midi, hasOctave, ok := tryParseMiniPitch(text); ok {
			tok := l.makeToken(minitoken.PitchToken)
			tok.Pitch = minitoken.PitchData{MIDINote: midi, HasOctave: hasOctave}
			return tok
		}
	}

	if l.sampleOnly {
		if chord, ok := tryParseMiniChord(text); ok {
			tok := l.makeToken(minitoken.ChordToken)
			tok.Chord = chord
			return tok
		}
	}

	variant := uint8(0)
	if l.peek() == ':' && isDigit(l.peekNext()) {
		l.advance() // consume ':'
		varStart := l.cur
		for isDigit(l.peek()) {
			l.advance()
		}
		v, _ := strconv.Atoi(l.pattern[varStart:l.cur])
		variant = uint8(v)
	}

	tok := l.makeToken(minitoken.SampleToken)
	tok.Sample = minitoken.SampleData{Name: text, Variant: variant}
	return tok
}

// tryParseMiniPitch parses text of the form [a-gA-G][#b]?[0-9]* (octave
// optional, defaults to 4). 'b' is only an accidental when not followed
// by another letter (otherwise it's the start of a sample name like "bd").
func tryParseMiniPitch(text string) (midi uint8, hasOctave bool, ok bool) {
	pos := 1
	accidental := 0
	if pos < len(text) {
		switch {
		case text[pos] == '#':
			accidental = 1
			pos++
		case text[pos] == 'b' && (pos+1 >= len(text) || !isAlpha(text[pos+1])):
			accidental = -1
			pos++
		}
	}
	octave := 4
	if pos < len(text) && isDigit(text[pos]) {
		hasOctave = true
		octave = int(text[pos] - '0')
		pos++
		if pos < len(text) && isDigit(text[pos]) {
			octave = octave*10 + int(text[pos]-'0')
			pos++
		}
	}
	if pos != len(text) {
		return 0, false, false
	}
	note := noteSemitones[toLower(text[0])-'a']
	m := (octave+1)*12 + note + accidental
	if m < 0 {
		m = 0
	}
	if m > 127 {
		m = 127
	}
	return uint8(m), hasOctave, true
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// tryParseMiniChord parses a chord symbol (e.g. "Am", "C7", "Fmaj7") with
// no octave, root note defaulting to octave 4.
func tryParseMiniChord(text string) (minitoken.ChordData, bool) {
	if text == "" || !isPitchLetter(text[0]) {
		return minitoken.ChordData{}, false
	}
	pos := 1
	root := strings.ToUpper(text[:1])
	for pos < len(text) && (text[pos] == '#' || text[pos] == 'b') {
		root += string(text[pos])
		pos++
	}
	quality := text[pos:]
	intervals, found := musictheory.LookupChord(quality)
	if !found {
		return minitoken.ChordData{}, false
	}
	rootMIDI, ok := musictheory.ParsePitchText(strings.ToLower(root) + "4")
	if !ok {
		return minitoken.ChordData{}, false
	}
	return minitoken.ChordData{
		Root:      root,
		Quality:   quality,
		RootMIDI:  rootMIDI,
		Intervals: intervals,
	}, true
}
