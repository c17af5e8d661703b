// Package bridge exposes a controller's devices over HTTP and WebSocket.
//
// The bridge is the network face of arductl-server. Remote tools read and
// write the same named properties the CLI uses; every write goes through
// the device's Set, so validation and hub locking apply unchanged.
//
// # Endpoints
//
//	GET /devices          JSON snapshot of every device and property
//	GET /devices/{name}   snapshot of one device (name or alias)
//	GET /ws               WebSocket property protocol
//
// # WebSocket Protocol
//
// Each text message is one JSON request:
//
//	{"id": "7", "op": "set", "device": "hub", "property": "NSteps", "value": "5"}
//
// op is "list", "get" or "set". Every request gets exactly one reply with
// the same id:
//
//	{"id": "7", "ok": true, "value": "5"}
//	{"id": "8", "ok": false, "error": "...", "error_type": "Sequence Too Long"}
//
// "list" replies with the full snapshot as value. Requests on one
// connection are answered in order.
//
// # Thread Safety
//
// Each WebSocket client runs in its own goroutine. Concurrent writes from
// different clients serialize on the hub's transport lock.
package bridge
