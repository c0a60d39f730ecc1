// Package httpapi exposes the debate engine over HTTP. Conversations are
// created and listed via a small JSON API; sending a message starts a debate
// run whose node events are streamed back as server-sent events and persisted
// as they happen.
package httpapi
