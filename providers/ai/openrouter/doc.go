// Package openrouter implements the ai.Provider interface for the OpenRouter
// API, an OpenAI-compatible gateway that fronts many upstream models behind
// one /v1/chat/completions endpoint.
//
// The main entry point is [New], which reads OPENROUTER_API_KEY and
// OPENROUTER_BASE_URL from the environment. Use [OpenRouterProvider.WithAPIKey]
// and [OpenRouterProvider.WithBaseURL] to override these values
// programmatically, and [OpenRouterProvider.WithAppAttribution] to set the
// optional HTTP-Referer/X-Title headers OpenRouter uses for app rankings.
package openrouter
