// Package minitoken defines the lexical token types for mini-notation
// pattern strings (the sublanguage inside pat(...)/seq(...)/note(...)).
//
// Mini-notation has its own lexical rules distinct from the main
// language: no keywords, '*'/'/' are speed modifiers rather than
// arithmetic, octave is optional on pitches (defaults to 4), and bare
// identifiers that aren't recognizable pitches are sample names.
package minitoken

import "github.com/akkadolang/cedarc/internal/source"

type Type uint8

const (
	Eof Type = iota

	PitchToken  // c4, f#3, Bb5
	SampleToken // bd, sd, hh, cp:2
	ChordToken  // Am, C7, Fmaj7 (sample_only mode only)
	Rest        // ~ or _
	Number      // 0.5, 3, 4.0

	LBracket // [
	RBracket // ]
	LAngle   // <
	RAngle   // >
	LParen   // (
	RParen   // )
	LBrace   // { polymeter
	RBrace   // } polymeter
	Comma

	Star     // *n speed up
	Slash    // /n slow down
	Colon    // :n duration, or :maj/:min chord quality
	At       // @n weight
	Bang     // !n repeat
	Question // ?n chance
	Percent  // %n polymeter step count

	Pipe // | random choice

	Error
)

var typeNames = [...]string{
	Eof: "Eof", PitchToken: "PitchToken", SampleToken: "SampleToken",
	ChordToken: "ChordToken", Rest: "Rest", Number: "Number",
	LBracket: "LBracket", RBracket: "RBracket", LAngle: "LAngle", RAngle: "RAngle",
	LParen: "LParen", RParen: "RParen", LBrace: "LBrace", RBrace: "RBrace",
	Comma: "Comma", Star: "Star", Slash: "Slash", Colon: "Colon", At: "At",
	Bang: "Bang", Question: "Question", Percent: "Percent", Pipe: "Pipe",
	Error: "Error",
}

func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "Unknown"
}

// PitchData is the payload of a PitchToken.
type PitchData struct {
	MIDINote  uint8
	HasOctave bool // whether an octave digit was present in source
}

// SampleData is the payload of a SampleToken.
type SampleData struct {
	Name    string
	Variant uint8
}

// ChordData is the payload of a ChordToken (sample_only mode).
type ChordData struct {
	Root      string // e.g. "A", "C#", "Bb"
	Quality   string // e.g. "", "m", "7", "maj7"
	RootMIDI  uint8  // default octave 4
	Intervals []int8
}

// Token is a single lexical unit from a mini-notation pattern.
type Token struct {
	Type     Type
	Location source.Location
	Lexeme   string

	Number float64
	Pitch  PitchData
	Sample SampleData
	Chord  ChordData
	Error  string
}

func (t Token) IsError() bool { return t.Type == Error }
func (t Token) IsEOF() bool   { return t.Type == Eof }
func (t Token) AsNumber() float64  { return t.Number }
func (t Token) AsPitch() PitchData { return t.Pitch }
func (t Token) AsSample() SampleData { return t.Sample }
func (t Token) AsChord() ChordData   { return t.Chord }
