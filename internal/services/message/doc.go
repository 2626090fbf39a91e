// Package message implements the durable message log.
//
// Every sent and received message is appended here. The whole history is
// persisted under the "messages" key on each append, then published to the
// in-memory view, so a caller that sees a message in List can rely on it
// surviving a restart. Timestamps stored as RFC 3339 strings or as unix
// milliseconds are both accepted on load.
package message
