// Package debate implements the turn-sequencing engine for a moderated
// three-role debate: a Moderator that opens, scores, transitions, and closes
// the conversation, and two opposing agents (Proponent and Critic) that may
// branch into bounded tool sub-loops before completing a turn.
//
// The package is organized around a small state machine:
//
//   - [State] is the canonical conversation state: an append-only message
//     log, a round counter, and the speaker designated by the Moderator.
//   - Nodes ([Moderator], [Agent], [ToolExecutor]) are functions from a state
//     snapshot to a [Patch]; they never mutate shared state directly.
//   - [Route] and [RouteAfterTools] are pure functions deciding which node
//     executes next, including the tool-loop guard that bounds agent/tool
//     alternation within a single turn.
//   - [Engine] drives the loop: invoke node, merge patch, route, repeat until
//     the Moderator sets [SpeakerFinish]. One [Event] is emitted per completed
//     node execution, exposed as an iter.Seq2 stream.
//
// Node execution is strictly sequential per conversation. The only
// intra-node concurrency is the ToolExecutor's fan-out over independent tool
// calls, which joins before its patch is returned.
package debate
