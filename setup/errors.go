package setup

import "errors"

// Sentinel errors, one per fatal condition named in the orchestrator.
var (
	ErrNoEdges            = errors.New("setup: no edge nodes configured")
	ErrNoDefaultInterface = errors.New("setup: edge node has no interface and no default is configured")
	ErrMacResolution      = errors.New("setup: could not resolve edge remote mac")
	ErrNotEnoughClients   = errors.New("setup: fewer clients than edges")
	ErrEmptyTopology      = errors.New("setup: topology has no links")
	ErrUnknownNodeRef     = errors.New("setup: edge references an unknown node id")
	ErrNegativeWeight     = errors.New("setup: negative link weight")

	errIPSpaceExhausted = errors.New("setup: ipv4 address space exhausted")
)
