// Package ai defines the provider-agnostic types and interfaces shared by all
// LLM provider implementations (OpenRouter, Gemini, test doubles). Each
// provider's conversion layer maps these types to its own wire format, keeping
// the debate engine decoupled from provider-specific details.
//
// The central interface is [Provider] for synchronous chat completions.
// Request data flows through [ChatRequest] and responses come back as
// [ChatResponse].
package ai
