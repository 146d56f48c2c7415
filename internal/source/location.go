// Package source defines the shared source-location type attached to
// tokens, AST nodes, and diagnostics across every compiler phase.
package source

// Location is a 1-based line/column plus a 0-based byte offset and span
// length. Every token, AST node, and diagnostic carries one.
type Location struct {
	Line   uint32 // 1-based
	Column uint32 // 1-based
	Offset uint32 // 0-based byte offset into the source
	Length uint32 // span length in bytes
}

// End returns the byte offset one past the end of the span.
func (l Location) End() uint32 {
	return l.Offset + l.Length
}

// Zero is the default, unset location (line/column 1, zero offset/length).
var Zero = Location{Line: 1, Column: 1}
