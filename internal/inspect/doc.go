// Package inspect serves a read-mostly HTTP view of live group view-models.
//
// Routes:
//
//	GET    /healthz               liveness and model count
//	GET    /metrics               Prometheus exposition (when enabled)
//	GET    /groups                every group view, ordered by id
//	POST   /groups                apply one snapshot (create or update)
//	GET    /groups/{id}           one group view plus its field values
//	DELETE /groups/{id}           evict a group from the registry
//	GET    /groups/{id}/watch     websocket stream of change frames
//
// A watch connection subscribes a listener on the dispatcher goroutine, so
// it sees exactly the notifications a bound UI would see. Frames are
// buffered per connection and dropped when the client falls behind.
package inspect
