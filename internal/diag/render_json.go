package diag

import (
	"encoding/json"

	"github.com/akkadolang/cedarc/internal/source"
)

// jsonPosition is an LSP-style zero-based line/character position.
type jsonPosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type jsonRange struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonDiagnostic struct {
	Severity string    `json:"severity"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	File     string    `json:"file"`
	Range    jsonRange `json:"range"`
}

func toJSONRange(loc source.Location) jsonRange {
	return jsonRange{
		Start: jsonPosition{Line: loc.Line - 1, Character: loc.Column - 1},
		End:   jsonPosition{Line: loc.Line - 1, Character: loc.Column - 1 + loc.Length},
	}
}

// ToJSON renders one diagnostic to the LSP-style JSON shape described in
// spec §6: {severity, code, message, file, range:{start,end}} with
// zero-based line/character.
func ToJSON(d Diagnostic) ([]byte, error) {
	return json.Marshal(toJSONDiagnostic(d))
}

// AllToJSON renders a full diagnostic list as a JSON array.
func AllToJSON(diagnostics []Diagnostic) ([]byte, error) {
	out := make([]jsonDiagnostic, len(diagnostics))
	for i, d := range diagnostics {
		out[i] = toJSONDiagnostic(d)
	}
	return json.Marshal(out)
}

func toJSONDiagnostic(d Diagnostic) jsonDiagnostic {
	return jsonDiagnostic{
		Severity: d.Severity.String(),
		Code:     d.Code,
		Message:  d.Message,
		File:     d.File,
		Range:    toJSONRange(d.Location),
	}
}
