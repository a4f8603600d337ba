// Package mcptool exposes dice evaluation as a Model Context Protocol tool.
package mcptool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abennett/roll/pkg"
)

const serverName = "roll"

// Version is reported to MCP clients during initialization.
var Version = "dev"

// RollInput is the roll_dice tool input schema.
type RollInput struct {
	Notation string `json:"notation" jsonschema:"dice notation, e.g. 4d6kh3 or 1d20+5 adv"`
}

// RollTerm mirrors pkg.TermResult with schema annotations.
type RollTerm struct {
	Kind     string `json:"kind" jsonschema:"dice, modifier, or advantage"`
	Rolls    []int  `json:"rolls,omitempty" jsonschema:"every die in draw order"`
	Used     []int  `json:"used,omitempty" jsonschema:"indices into rolls that count toward the subtotal"`
	Base     int    `json:"base,omitempty" jsonschema:"informational first d20 draw, not counted"`
	Pair     []int  `json:"pair,omitempty" jsonschema:"the two fresh d20 draws the value was chosen from"`
	Subtotal int    `json:"subtotal" jsonschema:"this term's contribution to the total"`
}

// RollOutput is the roll_dice tool output schema.
type RollOutput struct {
	Notation string     `json:"notation" jsonschema:"the notation as given"`
	Total    int        `json:"total" jsonschema:"sum of all term contributions"`
	Terms    []RollTerm `json:"terms" jsonschema:"per-term breakdown in source order"`
}

// RollTool defines the MCP tool schema for evaluating dice notation.
func RollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Evaluates tabletop dice notation (keep/drop, advantage) into per-die results and a total",
	}
}

// RollHandler evaluates a notation string against the given source.
func RollHandler(src pkg.Source) mcp.ToolHandlerFor[RollInput, RollOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollInput) (*mcp.CallToolResult, RollOutput, error) {
		expr, err := pkg.Parse(input.Notation)
		if err != nil {
			return nil, RollOutput{}, err
		}
		return nil, toOutput(pkg.Resolve(expr, src)), nil
	}
}

func toOutput(result pkg.Result) RollOutput {
	out := RollOutput{
		Notation: result.Notation,
		Total:    result.Total,
		Terms:    make([]RollTerm, 0, len(result.Terms)),
	}
	for _, tr := range result.Terms {
		term := RollTerm{
			Kind:     tr.Kind.String(),
			Rolls:    tr.Rolls,
			Used:     tr.Used,
			Subtotal: tr.Subtotal,
		}
		if tr.Kind == pkg.AdvantageResult {
			term.Base = tr.Base
			term.Pair = []int{tr.Pair[0], tr.Pair[1]}
		}
		out.Terms = append(out.Terms, term)
	}
	return out
}

// NewServer builds an MCP server with the roll_dice tool registered.
func NewServer(src pkg.Source) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: Version}, nil)
	mcp.AddTool(server, RollTool(), RollHandler(src))
	return server
}

// Serve runs the MCP server over stdio until ctx is canceled.
func Serve(ctx context.Context, src pkg.Source) error {
	return NewServer(src).Run(ctx, &mcp.StdioTransport{})
}
