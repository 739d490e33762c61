// Package stream serves the collections of a pipeline to remote clients.
//
// # Routes
//
//	GET  /healthz                  liveness
//	GET  /collections              names, kinds, sizes and sequence numbers
//	GET  /collections/{name}       JSON snapshot
//	GET  /collections/{name}/ws    WebSocket feed
//	POST /ops                      apply one operation or an array of them
//	GET  /metrics                  Prometheus metrics, when enabled
//
// # Feeds
//
// Every collection has one feed, subscribed when the server is created, so
// all clients of a collection share its event sequence numbers. A WebSocket
// client first receives a snapshot frame at the current sequence, then one
// event frame per change. Reconnecting with ?after=<seq> replays the missed
// events (flagged FlagReplay) when the feed history still holds them, and
// otherwise sends a fresh snapshot flagged FlagResync.
//
// Each client has a bounded send queue. A client that falls behind is sent
// a fatal QueueOverflow error and disconnected rather than silently missing
// events; it can reconnect with ?after= to catch up.
//
// Clients may send op frames; each is answered with an ack or an error
// frame carrying the op ID.
//
// # Authorization
//
// When server.authSecret is set, operations require an HS256 token, sent as
// "Authorization: Bearer <token>" or, for WebSocket, the token query
// parameter. Reading never requires a token.
//
// # Concurrency
//
// Live collections are single-threaded. The server serializes every
// pipeline call behind one mutex, and events are encoded and queued while
// it is held; network writes happen on per-client goroutines.
package stream
