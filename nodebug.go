//go:build !debug
// +build !debug

package fracmesh

const debugChecks = false
