// Package ast defines the arena-allocated abstract syntax tree shared by
// the main parser, analyzer, and code generator.
//
// Nodes live in one contiguous slice and reference each other by 32-bit
// index rather than pointer, with an intrusive first-child/next-sibling
// linked list for children — the same layout the teacher's bytecode
// pipeline uses for its own compact, allocation-light intermediate
// structures.
package ast

import "github.com/akkadolang/cedarc/internal/source"

// Index references a Node within an Arena. NullNode marks an absent link.
type Index uint32

const NullNode Index = 0xFFFFFFFF

// Type identifies the syntactic category of a Node.
type Type uint8

const (
	NumberLit Type = iota
	BoolLit
	StringLit
	PitchLit
	ChordLit
	ArrayLit

	Identifier
	Hole

	BinaryOp
	Call
	MethodCall
	Index_ // array indexing: arr[i] (trailing underscore avoids shadowing ast.Index)
	Pipe
	Closure

	Argument

	MiniLiteral

	MiniPattern
	MiniAtom
	MiniGroup
	MiniSequence
	MiniPolyrhythm
	MiniPolymeter
	MiniChoice
	MiniEuclidean
	MiniModified

	Assignment
	PostStmt
	Block
	FunctionDef

	MatchExpr
	MatchArm

	RecordLit
	FieldAccess
	PipeBinding

	Program
)

var typeNames = [...]string{
	NumberLit: "NumberLit", BoolLit: "BoolLit", StringLit: "StringLit",
	PitchLit: "PitchLit", ChordLit: "ChordLit", ArrayLit: "ArrayLit",
	Identifier: "Identifier", Hole: "Hole",
	BinaryOp: "BinaryOp", Call: "Call", MethodCall: "MethodCall",
	Index_: "Index", Pipe: "Pipe", Closure: "Closure",
	Argument:       "Argument",
	MiniLiteral:    "MiniLiteral",
	MiniPattern:    "MiniPattern",
	MiniAtom:       "MiniAtom",
	MiniGroup:      "MiniGroup",
	MiniSequence:   "MiniSequence",
	MiniPolyrhythm: "MiniPolyrhythm",
	MiniPolymeter:  "MiniPolymeter",
	MiniChoice:     "MiniChoice",
	MiniEuclidean:  "MiniEuclidean",
	MiniModified:   "MiniModified",
	Assignment:     "Assignment",
	PostStmt:       "PostStmt",
	Block:          "Block",
	FunctionDef:    "FunctionDef",
	MatchExpr:      "MatchExpr",
	MatchArm:       "MatchArm",
	RecordLit:      "RecordLit",
	FieldAccess:    "FieldAccess",
	PipeBinding:    "PipeBinding",
	Program:        "Program",
}

func (t Type) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "Unknown"
}

// BinOp identifies an arithmetic operator before pipe/binary desugaring
// to a Call node.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

var binOpFuncNames = [...]string{OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpPow: "pow"}

// FuncName returns the builtin function name a binary operator desugars
// to, e.g. OpAdd -> "add".
func (op BinOp) FuncName() string { return binOpFuncNames[op] }

// PatternType identifies which mini-notation entry keyword produced a
// MiniLiteral node.
type PatternType uint8

const (
	PatPat PatternType = iota
	PatSeq
	PatTimeline
	PatNote
)

// MiniAtomKind identifies the kind of a MiniAtom leaf.
type MiniAtomKind uint8

const (
	MiniAtomPitch MiniAtomKind = iota
	MiniAtomSample
	MiniAtomChord
	MiniAtomRest
)

// MiniModifierType identifies a mini-notation postfix modifier.
type MiniModifierType uint8

const (
	ModSpeed MiniModifierType = iota
	ModSlow
	ModDuration
	ModWeight
	ModRepeat
	ModChance
)

// Per-NodeType payloads. Exactly one is populated per node, matching
// which Type the node carries; accessors on Node assert the expected one.

type NumberData struct {
	Value     float64
	IsInteger bool
}

type BoolData struct{ Value bool }

type StringData struct{ Value string }

type IdentifierData struct{ Name string }

type BinaryOpData struct{ Op BinOp }

// ArgumentData names a call argument; Name == "" for positional args.
type ArgumentData struct{ Name string }

type PatternData struct{ PatternType PatternType }

type PitchData struct{ MIDINote uint8 }

type ChordData struct {
	RootMIDI  uint8
	Intervals []int8
}

// ClosureParamData is a closure parameter, optionally with a default
// value (HasDefault false means no default was given).
type ClosureParamData struct {
	Name         string
	HasDefault   bool
	DefaultValue float64
}

type MiniAtomData struct {
	Kind           MiniAtomKind
	MIDINote       uint8
	SampleName     string
	SampleVariant  uint8
	ChordRootMIDI  uint8
	ChordIntervals []int8
}

type MiniEuclideanData struct {
	Hits     uint8
	Steps    uint8
	Rotation uint8
}

type MiniModifierData struct {
	ModifierType MiniModifierType
	Value        float32
}

// MiniPolymeterData's StepCount == 0 means "use child count".
type MiniPolymeterData struct{ StepCount uint8 }

// FunctionDefData names a user function and how many leading Identifier
// children are parameters before the body.
type FunctionDefData struct {
	Name       string
	ParamCount int
}

// MatchArmData describes one `pattern [&& guard]: body` arm.
type MatchArmData struct {
	IsWildcard bool
	HasGuard   bool
	GuardNode  Index
}

// MatchExprData distinguishes `match(expr) {...}` from guard-only
// `match {...}`.
type MatchExprData struct{ HasScrutinee bool }

// RecordFieldData is a RecordLit child: a name and whether it was
// written in `{x}` shorthand (value taken from an identifier of the
// same name).
type RecordFieldData struct {
	Name        string
	IsShorthand bool
}

type FieldAccessData struct{ FieldName string }

// PipeBindingData names the binding introduced by `expr as name`.
type PipeBindingData struct{ BindingName string }

// HoleData optionally names a field projected off a hole (`%.field`);
// FieldName == "" means a bare `%`.
type HoleData struct{ FieldName string }

// Node is one AST node. Data holds the Type-specific payload as one of
// the *Data structs above, or nil for node types that carry no payload
// of their own (e.g. Program, Block, Pipe — their meaning is entirely
// in their children).
type Node struct {
	Type     Type
	Location source.Location

	FirstChild Index
	NextSibling Index

	Data any
}

func (n *Node) AsNumber() NumberData             { return n.Data.(NumberData) }
func (n *Node) AsBool() BoolData                 { return n.Data.(BoolData) }
func (n *Node) AsString() StringData             { return n.Data.(StringData) }
func (n *Node) AsIdentifier() IdentifierData     { return n.Data.(IdentifierData) }
func (n *Node) AsBinaryOp() BinaryOpData         { return n.Data.(BinaryOpData) }
func (n *Node) AsArgument() ArgumentData         { return n.Data.(ArgumentData) }
func (n *Node) AsPattern() PatternData           { return n.Data.(PatternData) }
func (n *Node) AsPitch() PitchData               { return n.Data.(PitchData) }
func (n *Node) AsChord() ChordData               { return n.Data.(ChordData) }
func (n *Node) AsClosureParam() ClosureParamData { return n.Data.(ClosureParamData) }
func (n *Node) AsMiniAtom() MiniAtomData         { return n.Data.(MiniAtomData) }
func (n *Node) AsMiniEuclidean() MiniEuclideanData { return n.Data.(MiniEuclideanData) }
func (n *Node) AsMiniModifier() MiniModifierData { return n.Data.(MiniModifierData) }
func (n *Node) AsMiniPolymeter() MiniPolymeterData { return n.Data.(MiniPolymeterData) }
func (n *Node) AsFunctionDef() FunctionDefData   { return n.Data.(FunctionDefData) }
func (n *Node) AsMatchArm() MatchArmData         { return n.Data.(MatchArmData) }
func (n *Node) AsMatchExpr() MatchExprData       { return n.Data.(MatchExprData) }
func (n *Node) AsRecordField() RecordFieldData   { return n.Data.(RecordFieldData) }
func (n *Node) AsFieldAccess() FieldAccessData   { return n.Data.(FieldAccessData) }
func (n *Node) AsPipeBinding() PipeBindingData   { return n.Data.(PipeBindingData) }
func (n *Node) AsHole() HoleData                 { return n.Data.(HoleData) }

// Arena is contiguous storage for every Node in one program's AST.
type Arena struct {
	nodes []Node
}

// NewArena creates an empty arena with room for a typical program.
func NewArena() *Arena {
	return &Arena{nodes: make([]Node, 0, 256)}
}

// Alloc appends a new, childless node and returns its index.
func (a *Arena) Alloc(typ Type, loc source.Location) Index {
	idx := Index(len(a.nodes))
	a.nodes = append(a.nodes, Node{
		Type:        typ,
		Location:    loc,
		FirstChild:  NullNode,
		NextSibling: NullNode,
	})
	return idx
}

// Get returns a pointer to the node at idx for in-place mutation (e.g.
// setting Data after Alloc).
func (a *Arena) Get(idx Index) *Node { return &a.nodes[idx] }

// Len returns the number of allocated nodes.
func (a *Arena) Len() int { return len(a.nodes) }

// Valid reports whether idx refers to an allocated node.
func (a *Arena) Valid(idx Index) bool { return idx != NullNode && int(idx) < len(a.nodes) }

// AddChild appends child to the end of parent's child list.
func (a *Arena) AddChild(parent, child Index) {
	p := &a.nodes[parent]
	if p.FirstChild == NullNode {
		p.FirstChild = child
		return
	}
	cur := p.FirstChild
	for a.nodes[cur].NextSibling != NullNode {
		cur = a.nodes[cur].NextSibling
	}
	a.nodes[cur].NextSibling = child
}

// ChildCount counts parent's direct children.
func (a *Arena) ChildCount(parent Index) int {
	count := 0
	cur := a.nodes[parent].FirstChild
	for cur != NullNode {
		count++
		cur = a.nodes[cur].NextSibling
	}
	return count
}

// ForEachChild calls fn for each direct child of parent, in order.
func (a *Arena) ForEachChild(parent Index, fn func(idx Index, n *Node)) {
	cur := a.nodes[parent].FirstChild
	for cur != NullNode {
		fn(cur, &a.nodes[cur])
		cur = a.nodes[cur].NextSibling
	}
}

// Children collects parent's direct children as a slice of indices.
func (a *Arena) Children(parent Index) []Index {
	out := make([]Index, 0, 4)
	a.ForEachChild(parent, func(idx Index, _ *Node) { out = append(out, idx) })
	return out
}

// AST is a parsed program: its arena plus the root node.
type AST struct {
	Arena *Arena
	Root  Index
}

// Valid reports whether parsing produced a root node.
func (t AST) Valid() bool { return t.Root != NullNode }
