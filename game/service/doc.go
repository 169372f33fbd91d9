// Package service implements the game session engine: the single place
// where matchmaking results become sessions and where every move request
// is validated against rules, turn order, and the clock before it mutates
// anything. Transports call into this package and broadcast whatever it
// returns; the service itself knows nothing about connections.
package service
