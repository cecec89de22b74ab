// Package notify wraps the messaging sink behind a fire-and-forget API.
//
// A failed delivery must never abort a poll cycle, so Send reports success
// as a bool and swallows sink errors after logging them. Sends are rate
// limited with a token bucket, and delivered messages are kept in a small
// in-memory history; the bus events it publishes feed the persistent
// history recorder.
package notify
