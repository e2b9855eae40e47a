// Package srs implements the character memory model and review scheduling.
//
// The model tracks stability (days until recall probability decays to the target
// retention), difficulty (1-10) and a lifecycle state per user character. Every
// function here is pure: time is always passed in by the caller, and inputs are
// copied rather than mutated, so a single Service can be shared freely between
// goroutines.
package srs
