// Package debaterules provides the standing orders lookup tool. Agents and
// the Moderator can consult the official rules of debate to verify whether a
// participant is breaking protocol.
package debaterules

import (
	"context"

	"github.com/leofalp/parliament/providers/tool"
)

const standingOrders = `STANDING ORDERS OF THE PARLIAMENT:
1. Stay on Topic: All arguments must directly address the motion.
2. No Ad Hominem: Attack the argument, not the opponent.
3. Citations: Use 'web_search' to back up statistical claims.
4. Brevity: Speak efficiently (under 150 words preferred).
5. Decorum: Maintain a formal but passionate tone.`

// New returns the debate rules tool, ready to be registered in a catalog.
func New() *tool.Tool[Input, Output] {
	return tool.NewTool[Input, Output](
		"get_debate_rules",
		Rules,
		tool.WithDescription("Retrieve the official Standing Orders (Rules of Debate) for the current session. Use this to verify whether a participant is breaking protocol."),
	)
}

// Input is empty; the rules take no parameters.
type Input struct{}

// Output carries the standing orders text.
type Output struct {
	Rules string `json:"rules" jsonschema:"description=The standing orders of the debate"`
}

// Rules returns the session's standing orders. It never fails.
func Rules(_ context.Context, _ Input) (Output, error) {
	return Output{Rules: standingOrders}, nil
}
