// Package engine is the progression core of the tycoon game.
//
// Every exported operation is a pure transform from (profile, ..., settings) to a new
// profile. Nothing here reads the clock, performs I/O or keeps state between calls; a
// rejected action returns the input profile unchanged. Callers that share one profile
// between a tick loop and user actions must serialize those calls themselves (see
// package session).
package engine
