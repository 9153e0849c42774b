//go:build debug
// +build debug

package fracmesh

// debugChecks makes invariant violations panic instead of returning errors.
const debugChecks = true
