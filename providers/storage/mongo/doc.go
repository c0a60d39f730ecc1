// Package mongostore persists debate conversations in MongoDB. Each
// conversation is one document: id, title, creation time, and the ordered
// message log. Messages are appended as the engine produces them so a client
// reconnecting mid-debate sees everything streamed so far.
package mongostore
