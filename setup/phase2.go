package setup

import (
	"io"
	"math"

	"github.com/vnetcore/vnetcore/graphml"
	"github.com/vnetcore/vnetcore/ipv4"
	"github.com/vnetcore/vnetcore/macaddr"
	"github.com/vnetcore/vnetcore/routeplan"
	"github.com/vnetcore/vnetcore/worker"
)

// reservedCIDRs are the addresses an interface-address draw must
// never land in, beyond the edges' own virtual subnets.
var reservedCIDRs = []string{"0.0.0.0/8", "127.0.0.0/8", "255.255.255.255/32"}

// phase2Stages returns the topology-instantiation pipeline, in the
// order spec.md §4.G Phase 2 requires. src is the GraphML document.
func phase2Stages(c *setupContext, src io.Reader) []func() error {
	return []func() error{
		c.buildAddrIterator,
		c.installRoot,
		c.installEdgeInterfaces,
		func() error { return c.ingestTopology(src) },
		c.assignClientsToEdges,
		c.emitAllPairsRoutes,
	}
}

// buildAddrIterator constructs the /0 iterator over every address
// except the three reserved ranges and each edge's virtual subnet.
func (c *setupContext) buildAddrIterator() error {
	var avoid []ipv4.Subnet
	for _, cidr := range reservedCIDRs {
		sub, err := ipv4.ParseCIDR(cidr)
		if err != nil {
			return err
		}
		avoid = append(avoid, sub)
	}
	for _, e := range c.edges {
		avoid = append(avoid, e.virtualSubnet)
	}
	parent, err := ipv4.ParseCIDR("0.0.0.0/0")
	if err != nil {
		return err
	}
	c.addrIter = ipv4.NewAddrIter(parent, avoid)
	c.macGen = macaddr.NewGenerator()
	return nil
}

// installRoot draws two addresses for the root namespace and
// registers them with the worker.
func (c *setupContext) installRoot() error {
	a, ok := c.addrIter.Next()
	if !ok {
		return errIPSpaceExhausted
	}
	b, ok := c.addrIter.Next()
	if !ok {
		return errIPSpaceExhausted
	}
	return c.worker.AddRoot(a, b)
}

// installEdgeInterfaces registers each distinct physical interface
// once (duplicates share a port) and installs each edge's forwarding
// route.
func (c *setupContext) installEdgeInterfaces() error {
	for i := range c.edges {
		port, err := c.worker.AddEdgeInterface(c.edges[i].intf)
		if err != nil {
			return err
		}
		c.edges[i].port = port

		localMac, err := c.worker.GetEdgeLocalMac(c.edges[i].intf)
		if err != nil {
			return err
		}
		if err := c.worker.AddEdgeRoutes(c.edges[i].virtualSubnet, port, localMac, c.edges[i].mac); err != nil {
			return err
		}
	}
	return nil
}

// ingestTopology drives the GraphML parser over src, handling node
// and link callbacks per spec.md §4.G.4.
func (c *setupContext) ingestTopology(src io.Reader) error {
	driver := graphml.New(graphml.Options{
		TwoPass:    c.cfg.GraphML.TwoPass,
		ClientType: c.cfg.GraphML.ClientType,
		Logger:     c.log,
	})
	err := driver.Run(src, c.onNode, c.onLink)
	if err != nil {
		return err
	}
	if !c.sawLink {
		return ErrEmptyTopology
	}
	if c.planner == nil {
		return ErrNotEnoughClients
	}
	return c.planner.Plan()
}

// onNode allocates a dense id and an interface address for a newly
// seen node, and, if it is a client, a MAC block.
func (c *setupContext) onNode(n graphml.Node) error {
	id := len(c.nodes)
	c.nodeIdx[n.ID] = id

	addr, ok := c.addrIter.Next()
	if !ok {
		return errIPSpaceExhausted
	}

	state := nodeState{
		extID:    n.ID,
		addr:     addr,
		isClient: n.IsClient,
		meta: nodeMeta{
			packetLoss:    n.PacketLoss,
			bandwidthUp:   n.BandwidthUp,
			bandwidthDown: n.BandwidthDown,
		},
	}

	if n.IsClient {
		state.clientMacs = make([]macaddr.Addr, worker.NeededMACsClient)
		if err := c.macGen.NextMany(state.clientMacs); err != nil {
			return err
		}
		c.clientCount++
	}
	c.nodes = append(c.nodes, state)

	return c.worker.AddHost(id, addr, state.clientMacs, workerHostMeta(n))
}

// onLink handles every <edge>; on the first invocation it also
// transitions the context into "accepting links" and sizes the
// planner.
func (c *setupContext) onLink(l graphml.Link) error {
	if !c.acceptingLinks {
		c.acceptingLinks = true
		edgeCount := len(c.edges)
		if c.clientCount < edgeCount {
			return ErrNotEnoughClients
		}
		if err := c.worker.EnsureSystemScaling(len(c.nodes)*len(c.nodes), len(c.nodes), c.clientCount); err != nil {
			return err
		}
		c.planner = routeplan.New(len(c.nodes))
		c.clientsPerEdge = float64(c.clientCount) / float64(edgeCount)
	}
	c.sawLink = true

	u, ok := c.nodeIdx[l.Source]
	if !ok {
		return ErrUnknownNodeRef
	}
	v, ok := c.nodeIdx[l.Target]
	if !ok {
		return ErrUnknownNodeRef
	}

	meta := worker.LinkMeta{Latency: l.Latency, PacketLoss: l.PacketLoss, Jitter: l.Jitter, QueueLen: l.QueueLen}

	if u == v && c.nodes[u].isClient {
		return c.worker.SetSelfLink(u, meta)
	}

	weight := linkWeight(l, c.cfg.GraphML.WeightKey)
	if weight < 0 {
		return ErrNegativeWeight
	}

	macs := make([]macaddr.Addr, worker.NeededMACsLink)
	if err := c.macGen.NextMany(macs); err != nil {
		return err
	}
	if err := c.worker.AddLink(u, v, c.nodes[u].addr, c.nodes[v].addr, macs, meta); err != nil {
		return err
	}
	if err := c.planner.SetWeight(u, v, weight); err != nil {
		return err
	}
	return c.planner.SetWeight(v, u, weight)
}

// linkWeight picks the Link field route planning should treat as the
// edge weight, per GraphMLConfig.WeightKey; it defaults to latency
// when key is empty or names a field this component doesn't carry.
func linkWeight(l graphml.Link, key string) float64 {
	switch key {
	case "packetloss":
		return l.PacketLoss
	case "jitter":
		return l.Jitter
	case "queue_len":
		return float64(l.QueueLen)
	default:
		return l.Latency
	}
}

// roundHalfToEven implements banker's rounding, matching the
// round-to-nearest-even contract spec.md's round-robin assignment
// requires.
func roundHalfToEven(x float64) int {
	return int(math.RoundToEven(x))
}

// assignClientsToEdges walks client nodes in id order, handing out
// edge-capacity-sized fragments of each edge's virtual subnet,
// computing each edge's capacity as a difference of rounds so totals
// reconcile exactly regardless of floating-point representation.
func (c *setupContext) assignClientsToEdges() error {
	edgeCount := len(c.edges)
	currentEdge := 0
	remainingInEdge := 0
	var frag *ipv4.FragmentIter

	prevRound := 0
	for nodeID := range c.nodes {
		if !c.nodes[nodeID].isClient {
			continue
		}
		for remainingInEdge == 0 {
			if currentEdge >= edgeCount {
				return ErrNotEnoughClients
			}
			thisRound := roundHalfToEven(c.clientsPerEdge * float64(currentEdge+1))
			capacity := thisRound - prevRound
			prevRound = thisRound
			if capacity > 0 {
				it, err := ipv4.NewFragmentIter(c.edges[currentEdge].virtualSubnet, capacity)
				if err != nil {
					return err
				}
				frag = it
				remainingInEdge = capacity
			} else {
				currentEdge++
			}
		}

		sub, ok := frag.Next()
		if !ok {
			return ErrNotEnoughClients
		}
		remainingInEdge--

		c.nodes[nodeID].clientSubnet = sub
		c.nodes[nodeID].hasSubnet = true

		if err := c.worker.AddClientRoutes(nodeID, c.nodes[nodeID].clientMacs, sub, c.edges[currentEdge].port); err != nil {
			return err
		}
		if remainingInEdge == 0 {
			currentEdge++
		}
	}
	return nil
}

// emitAllPairsRoutes walks every unordered client pair in lexicographic
// order, requests its shortest path, and registers one forwarding hop
// per edge on the path. Unreachable pairs are skipped; the first one
// logs a single warning for the whole run.
func (c *setupContext) emitAllPairsRoutes() error {
	warnedUnreachable := false
	var clientIDs []int
	for i, n := range c.nodes {
		if n.isClient {
			clientIDs = append(clientIDs, i)
		}
	}
	for i := 0; i < len(clientIDs); i++ {
		for j := i + 1; j < len(clientIDs); j++ {
			s, t := clientIDs[i], clientIDs[j]
			path, length, err := c.planner.Route(s, t)
			if err == routeplan.Unreachable {
				if !warnedUnreachable {
					c.log.WithFields(logFields("src", s, "dst", t)).Warn("setup: unreachable client pair")
					warnedUnreachable = true
				}
				continue
			}
			if err != nil {
				return err
			}
			if length < 2 {
				c.log.WithFields(logFields("src", s, "dst", t)).Error("setup: route shorter than two nodes")
				continue
			}
			for k := 0; k+1 < len(path); k++ {
				u, v := path[k], path[k+1]
				if err := c.worker.AddInternalRoutes(u, v, c.nodes[u].addr, c.nodes[v].addr, c.nodes[s].clientSubnet, c.nodes[t].clientSubnet); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func workerHostMeta(n graphml.Node) worker.HostMeta {
	return worker.HostMeta{
		PacketLoss:    n.PacketLoss,
		BandwidthUp:   n.BandwidthUp,
		BandwidthDown: n.BandwidthDown,
	}
}
