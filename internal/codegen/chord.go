package codegen

import (
	"strings"

	"github.com/akkadolang/cedarc/internal/musictheory"
)

// chordInfo is one parsed lead-sheet chord symbol: a root note name plus
// a quality suffix ("", "m", "7", "maj7", "dim", ...), resolved to a
// root MIDI note and its interval set.
type chordInfo struct {
	root      string
	quality   string
	rootMIDI  uint8
	intervals []int8
}

// parseChordSymbol parses one lead-sheet chord symbol such as "Am",
// "C7", "Fmaj7", "Bb+". The root is one note letter followed by zero or
// more '#'/'b' accidentals; everything after is the quality suffix,
// looked up in the same interval table musictheory.ParseChordText uses,
// falling back to a major triad for an unrecognized quality.
func parseChordSymbol(symbol string) (chordInfo, bool) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return chordInfo{}, false
	}

	letter := symbol[0]
	i := 1
	accidentals := 0
	for i < len(symbol) && (symbol[i] == '#' || symbol[i] == 'b') {
		if symbol[i] == '#' {
			accidentals++
		} else {
			accidentals--
		}
		i++
	}

	rootMIDI, ok := musictheory.NoteToMIDI(letter, accidentals, 4)
	if !ok {
		return chordInfo{}, false
	}

	quality := symbol[i:]
	intervals, found := musictheory.LookupChord(quality)
	if !found {
		intervals, _ = musictheory.LookupChord("")
	}

	root := string(toUpperASCII(letter))
	for j := 1; j < i; j++ {
		root += string(symbol[j])
	}

	return chordInfo{root: root, quality: quality, rootMIDI: rootMIDI, intervals: intervals}, true
}

func toUpperASCII(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// expandChord converts a parsed chord to absolute MIDI note numbers at
// the given base octave, re-deriving the root at that octave (rootMIDI
// on chordInfo is always computed at octave 4).
func expandChord(c chordInfo, octave int) []int {
	if len(c.root) == 0 {
		return nil
	}
	letter := c.root[0]
	accidentals := 0
	for j := 1; j < len(c.root); j++ {
		if c.root[j] == '#' {
			accidentals++
		} else if c.root[j] == 'b' {
			accidentals--
		}
	}
	root, ok := musictheory.NoteToMIDI(letter, accidentals, octave)
	if !ok {
		return nil
	}

	notes := make([]int, 0, len(c.intervals))
	for _, iv := range c.intervals {
		notes = append(notes, int(root)+int(iv))
	}
	return notes
}

// parseChordPattern parses a space-separated chord progression such as
// "Am C7 F G". Returns nil if any chord symbol fails to parse.
func parseChordPattern(pattern string) []chordInfo {
	fields := strings.Fields(pattern)
	if len(fields) == 0 {
		return nil
	}

	chords := make([]chordInfo, 0, len(fields))
	for _, f := range fields {
		c, ok := parseChordSymbol(f)
		if !ok {
			return nil
		}
		chords = append(chords, c)
	}
	return chords
}
