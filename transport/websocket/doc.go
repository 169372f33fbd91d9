// Package websocket is the gameplay transport: one connection per
// authenticated client, rooms keyed by session id, and fire-and-forget
// fan-out of full state snapshots. Room membership is purely a delivery
// concern; nothing in here decides game legality.
package websocket
