package setup

import (
	"github.com/vnetcore/vnetcore/ipv4"
	"github.com/vnetcore/vnetcore/macaddr"
)

// edgeState is the validated, defaulted runtime form of one
// EdgeNodeConfig; phase 1 populates it completely before phase 2 runs.
type edgeState struct {
	ip            ipv4.Addr
	intf          string
	mac           macaddr.Addr
	virtualSubnet ipv4.Subnet
	port          int
}

// nodeState is the orchestrator's per-topology-node record, keyed by
// dense id assigned in first-seen order.
type nodeState struct {
	extID         string
	addr          ipv4.Addr
	isClient      bool
	clientSubnet  ipv4.Subnet
	clientMacs    []macaddr.Addr
	hasSubnet     bool
	meta          nodeMeta
}

type nodeMeta struct {
	packetLoss    float64
	bandwidthUp   float64
	bandwidthDown float64
}
