// Package tool provides the typed tool abstraction the debate agents use to
// gather evidence mid-turn. A [Tool] binds a name and description to a
// strongly-typed Go function and derives a JSON schema for its input so
// providers can advertise it to the model. A [Catalog] holds the tools
// enabled for a conversation and dispatches calls by name.
//
// Tool execution is total from the engine's point of view: a tool returning
// an error is reported to the model as readable text, never as a node
// failure.
package tool
