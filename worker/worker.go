// Package worker defines the external contract the setup orchestrator
// drives to realize namespaces, virtual links, MAC-table entries and
// kernel routes. Implementations must be side-effecting but idempotent
// per (id, kind): calling an Add* method twice with the same logical
// identity must not double-register state.
package worker

import (
	"github.com/vnetcore/vnetcore/ipv4"
	"github.com/vnetcore/vnetcore/macaddr"
)

// HostMeta carries the per-node attributes parsed off the topology
// document that the worker needs to shape the emulated host.
type HostMeta struct {
	PacketLoss    float64
	BandwidthUp   float64
	BandwidthDown float64
}

// LinkMeta carries the per-edge attributes of a virtual link.
type LinkMeta struct {
	Latency    float64
	PacketLoss float64
	Jitter     float64
	QueueLen   int
}

// Interface is the host-abstraction API the orchestrator drives.
// Every method may block; callers propagate the first error and run
// cleanup.
type Interface interface {
	// Init prepares the worker for a run: namespace prefix, OVS
	// database directory/schema, and a soft memory cap in bytes.
	Init(nsPrefix, ovsDir, ovsSchema string, softMemCap int64) error

	// DestroyHosts removes every host previously registered through
	// this worker and reports how many were deleted. setup.Run does
	// not call it.
	DestroyHosts() (int, error)

	// GetEdgeRemoteMac discovers the MAC address reachable at ip over
	// intf.
	GetEdgeRemoteMac(intf string, ip ipv4.Addr) (macaddr.Addr, error)

	// GetEdgeLocalMac returns the MAC address of the local interface
	// intf.
	GetEdgeLocalMac(intf string) (macaddr.Addr, error)

	// AddRoot installs the root namespace's two addresses.
	AddRoot(a, b ipv4.Addr) error

	// AddEdgeInterface registers a physical interface and returns its
	// assigned port number. Calling this twice for the same interface
	// name returns the same port.
	AddEdgeInterface(intf string) (int, error)

	// AddEdgeRoutes installs the forwarding entry that sends traffic
	// for subnet out port toward remoteMac, sourced from localMac.
	AddEdgeRoutes(subnet ipv4.Subnet, port int, localMac, remoteMac macaddr.Addr) error

	// AddHost registers a virtual host with the given dense id,
	// interface address, MAC block, and metadata.
	AddHost(id int, addr ipv4.Addr, macs []macaddr.Addr, meta HostMeta) error

	// AddLink registers a virtual link between hosts u and v.
	AddLink(u, v int, ipU, ipV ipv4.Addr, macs []macaddr.Addr, meta LinkMeta) error

	// SetSelfLink registers a self-loop link for a client host that
	// links to itself.
	SetSelfLink(id int, meta LinkMeta) error

	// AddClientRoutes registers the subnet and MAC block assigned to
	// client host id, reachable via edgePort.
	AddClientRoutes(id int, macs []macaddr.Addr, subnet ipv4.Subnet, edgePort int) error

	// AddInternalRoutes registers one forwarding hop from u to v for
	// traffic between srcSubnet and dstSubnet.
	AddInternalRoutes(u, v int, ipU, ipV ipv4.Addr, srcSubnet, dstSubnet ipv4.Subnet) error

	// EnsureSystemScaling pre-sizes worker-internal tables given
	// upper bounds on links, nodes and clients.
	EnsureSystemScaling(maxLinks, nodes, clients int) error

	// Cleanup releases any resources the worker holds beyond host and
	// link state (e.g. open database handles). Called once per run
	// regardless of success or failure.
	Cleanup() error
}

// NeededMACsClient is the size of the MAC block allocated to a client
// host (spec: NEEDED_MACS_CLIENT).
const NeededMACsClient = 1

// NeededMACsLink is the size of the MAC block allocated per link
// (spec: NEEDED_MACS_LINK).
const NeededMACsLink = 2
