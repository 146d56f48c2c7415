package codegen

import (
	"testing"

	"github.com/akkadolang/cedarc/internal/analyzer"
	"github.com/akkadolang/cedarc/internal/diag"
	"github.com/akkadolang/cedarc/internal/instr"
	"github.com/akkadolang/cedarc/internal/lexer"
	"github.com/akkadolang/cedarc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) Result {
	t.Helper()
	tokens, lexDiags := lexer.LexAll(src, "<test>")
	require.Empty(t, lexDiags)

	p := parser.New(tokens, "<test>")
	tree := p.Parse()
	require.False(t, p.HasErrors(), "parse errors: %v", p.Diagnostics())

	diags := diag.NewStore("<test>")
	analyzed := analyzer.New(diags).Analyze(tree)
	require.True(t, analyzed.Success, "analyzer diags: %v", diags.All())

	return New(diags).Generate(analyzed.Output, analyzed.Symbols, "<test>", nil)
}

func TestGenerateNumberLiteralEmitsPushConst(t *testing.T) {
	result := compile(t, "440")
	require.True(t, result.Success)
	require.Len(t, result.Instructions, 1)
	assert.Equal(t, instr.PUSH_CONST, result.Instructions[0].Opcode)
	assert.Equal(t, float32(440), result.Instructions[0].ConstValue())
}

func TestGenerateSimpleOscillatorCall(t *testing.T) {
	result := compile(t, "sin(440)")
	require.True(t, result.Success)

	var sawConst, sine bool
	for _, inst := range result.Instructions {
		if inst.Opcode == instr.PUSH_CONST && inst.ConstValue() == 440 {
			sawConst = true
		}
		if inst.Opcode == instr.OSC_SIN {
			sine = true
		}
	}
	assert.True(t, sawConst)
	assert.True(t, sine)
}

func TestGenerateBinaryOpDesugarsToArithmeticOpcode(t *testing.T) {
	result := compile(t, "1 + 2")
	require.True(t, result.Success)
	require.NotEmpty(t, result.Instructions)
	last := result.Instructions[len(result.Instructions)-1]
	assert.Equal(t, instr.ADD, last.Opcode)
}

func TestGenerateUserFunctionInlinesBody(t *testing.T) {
	result := compile(t, "fn square(x) -> x * x\nsquare(3)")
	require.True(t, result.Success)

	var mulCount int
	for _, inst := range result.Instructions {
		if inst.Opcode == instr.MUL {
			mulCount++
		}
	}
	assert.Equal(t, 1, mulCount)
}

func TestGenerateArrayLiteralRegistersMultiBuffer(t *testing.T) {
	result := compile(t, "len([1, 2, 3])")
	require.True(t, result.Success)

	var sawThree bool
	for _, inst := range result.Instructions {
		if inst.Opcode == instr.PUSH_CONST && inst.ConstValue() == 3 {
			sawThree = true
		}
	}
	assert.True(t, sawThree)
}

func TestGenerateRangeExpandsToConstants(t *testing.T) {
	result := compile(t, "sum(range(0, 4))")
	require.True(t, result.Success)

	var pushCount, addCount int
	for _, inst := range result.Instructions {
		if inst.Opcode == instr.PUSH_CONST {
			pushCount++
		}
		if inst.Opcode == instr.ADD {
			addCount++
		}
	}
	assert.Equal(t, 4, pushCount)
	assert.Equal(t, 3, addCount)
}

func TestGenerateChordLiteralCompiles(t *testing.T) {
	result := compile(t, "'c4:maj'")
	require.True(t, result.Success)
}

func TestGenerateMapAppliesClosurePerElement(t *testing.T) {
	result := compile(t, "map([1, 2, 3], (x) -> x * 2)")
	require.True(t, result.Success)

	var mulCount int
	for _, inst := range result.Instructions {
		if inst.Opcode == instr.MUL {
			mulCount++
		}
	}
	assert.Equal(t, 3, mulCount)
}

func TestGenerateParamCallEmitsEnvGetAndDecl(t *testing.T) {
	result := compile(t, `param("cutoff", 800, 20, 20000)`)
	require.True(t, result.Success)

	require.Len(t, result.Params, 1)
	assert.Equal(t, "cutoff", result.Params[0].Name)
	assert.Equal(t, ParamKnob, result.Params[0].Kind)

	var sawEnvGet bool
	for _, inst := range result.Instructions {
		if inst.Opcode == instr.ENV_GET {
			sawEnvGet = true
		}
	}
	assert.True(t, sawEnvGet)
}

func TestGenerateOutWithSingleArgDuplicatesToStereo(t *testing.T) {
	result := compile(t, "out(sin(220))")
	require.True(t, result.Success)

	last := result.Instructions[len(result.Instructions)-1]
	require.Equal(t, instr.OUTPUT, last.Opcode)
	assert.Equal(t, last.Inputs[0], last.Inputs[1])
}
