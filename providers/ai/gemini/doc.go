// Package gemini implements the ai.Provider interface on top of Google's
// genai SDK. It supports plain text generation only; requests that advertise
// tools are rejected. The debate engine uses it for fast auxiliary
// generations such as conversation titles.
package gemini
