// Package token defines the lexical token types shared by the main
// language lexer/parser.
package token

import "github.com/akkadolang/cedarc/internal/source"

// Type identifies the lexical category of a Token.
type Type uint8

const (
	Eof Type = iota

	// Literals
	Number
	String
	Identifier
	PitchLit // 'c4', 'f#3', 'Bb5'
	ChordLit // 'c4:maj', 'a3:min7'

	// Keywords
	True
	False
	Post
	Match
	Fn

	// Pattern constructors (consume mini-notation arguments)
	Pat
	Seq
	Timeline
	Note

	// Operators
	Plus
	Minus
	Star
	Slash
	Caret
	Dot
	Pipe // |>
	Equals
	Arrow

	// Comparison
	Less
	Greater
	LessEqual
	GreaterEqual
	EqualEqual
	BangEqual

	// Delimiters
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon
	Semicolon

	// Special
	Hole       // %
	At         // weight modifier, e.g. a@3
	Bang       // repeat modifier, e.g. a!
	Question   // chance modifier, e.g. a?
	Tilde      // rest
	Underscore // match-arm wildcard `_`

	// Raw mini-notation string content, re-lexed by the pattern lexer.
	MiniString

	// Error is emitted instead of halting; the lexeme carries the
	// offending text and the diagnostic store carries the message.
	Error
)

var typeNames = [...]string{
	Eof:          "Eof",
	Number:       "Number",
	String:       "String",
	Identifier:   "Identifier",
	PitchLit:     "PitchLit",
	ChordLit:     "ChordLit",
	True:         "True",
	False:        "False",
	Post:         "Post",
	Match:        "Match",
	Fn:           "Fn",
	Pat:          "Pat",
	Seq:          "Seq",
	Timeline:     "Timeline",
	Note:         "Note",
	Plus:         "Plus",
	Minus:        "Minus",
	Star:         "Star",
	Slash:        "Slash",
	Caret:        "Caret",
	Dot:          "Dot",
	Pipe:         "Pipe",
	Equals:       "Equals",
	Arrow:        "Arrow",
	Less:         "Less",
	Greater:      "Greater",
	LessEqual:    "LessEqual",
	GreaterEqual: "GreaterEqual",
	EqualEqual:   "EqualEqual",
	BangEqual:    "BangEqual",
	LParen:       "LParen",
	RParen:       "RParen",
	LBracket:     "LBracket",
	RBracket:     "RBracket",
	LBrace:       "LBrace",
	RBrace:       "RBrace",
	Comma:        "Comma",
	Colon:        "Colon",
	Semicolon:    "Semicolon",
	Hole:         "Hole",
	At:           "At",
	Bang:         "Bang",
	Question:     "Question",
	Tilde:        "Tilde",
	Underscore:   "Underscore",
	MiniString:   "MiniString",
	Error:        "Error",
}

func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "Unknown"
}

// Keywords maps reserved identifiers to their token type.
var Keywords = map[string]Type{
	"true":     True,
	"false":    False,
	"post":     Post,
	"match":    Match,
	"fn":       Fn,
	"pat":      Pat,
	"seq":      Seq,
	"timeline": Timeline,
	"note":     Note,
}

// NumericValue is the parsed payload of a Number token.
type NumericValue struct {
	Value     float64
	IsInteger bool
}

// PitchValue is the parsed payload of a PitchLit token: a MIDI note number.
type PitchValue struct {
	MIDINote uint8
}

// ChordValue is the parsed payload of a ChordLit token: a root MIDI note
// plus the interval set above it, in semitones.
type ChordValue struct {
	RootMIDI  uint8
	Intervals []int8
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Type     Type
	Location source.Location
	Lexeme   string // slice of the original source text

	Number NumericValue
	Text   string // String/Identifier/MiniString payload
	Pitch  PitchValue
	Chord  ChordValue
}

// IsError reports whether this is an Error token.
func (t Token) IsError() bool { return t.Type == Error }

// IsEOF reports whether this is the end-of-file token.
func (t Token) IsEOF() bool { return t.Type == Eof }

// AsNumber returns the token's numeric value. Callers must check Type == Number.
func (t Token) AsNumber() float64 { return t.Number.Value }

// AsString returns the token's string payload. Callers must check
// Type == String, Identifier, or MiniString.
func (t Token) AsString() string { return t.Text }

// AsPitch returns the token's MIDI note. Callers must check Type == PitchLit.
func (t Token) AsPitch() uint8 { return t.Pitch.MIDINote }

// AsChord returns the token's chord payload. Callers must check Type == ChordLit.
func (t Token) AsChord() ChordValue { return t.Chord }
