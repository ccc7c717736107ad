package setup

import (
	"fmt"

	"github.com/vnetcore/vnetcore/ipv4"
	"github.com/vnetcore/vnetcore/macaddr"
)

// phase1Stages returns the edge validation and defaulting pipeline, in
// the order spec.md §4.G Phase 1 requires.
func phase1Stages(c *setupContext) []func() error {
	return []func() error{
		c.requireEdges,
		c.defaultInterfaces,
		c.resolveMacs,
		c.fragmentUnspecifiedSubnets,
		c.logEdgeTable,
	}
}

// requireEdges fails unless at least one edge node is configured.
func (c *setupContext) requireEdges() error {
	if len(c.cfg.EdgeNodes) == 0 {
		return ErrNoEdges
	}
	c.edges = make([]edgeState, len(c.cfg.EdgeNodes))
	for i, e := range c.cfg.EdgeNodes {
		ip, err := ipv4.Parse(e.IP)
		if err != nil {
			return fmt.Errorf("setup: edge %d: %w", i, err)
		}
		c.edges[i].ip = ip
	}
	return nil
}

// defaultInterfaces fills in each edge's interface from the global
// default when the edge omits one; an edge that omits it with no
// default configured is fatal.
func (c *setupContext) defaultInterfaces() error {
	for i, e := range c.cfg.EdgeNodes {
		intf := e.Interface
		if intf == "" {
			intf = c.cfg.EdgeNodeDefaults.Interface
		}
		if intf == "" {
			return fmt.Errorf("%w: edge %d (%s)", ErrNoDefaultInterface, i, e.IP)
		}
		c.edges[i].intf = intf
	}
	return nil
}

// resolveMacs fills in each edge's MAC from config if given, otherwise
// resolves it through the worker by (interface, ip).
func (c *setupContext) resolveMacs() error {
	for i, e := range c.cfg.EdgeNodes {
		if e.Mac != "" {
			mac, err := macaddr.Parse(e.Mac)
			if err != nil {
				return fmt.Errorf("setup: edge %d: %w", i, err)
			}
			c.edges[i].mac = mac
			continue
		}
		mac, err := c.worker.GetEdgeRemoteMac(c.edges[i].intf, c.edges[i].ip)
		if err != nil {
			return fmt.Errorf("%w: edge %d (%s): %v", ErrMacResolution, i, e.IP, err)
		}
		c.edges[i].mac = mac
	}
	return nil
}

// fragmentUnspecifiedSubnets counts edges with no virtual subnet
// configured and, if any, fragments the global default client subnet
// into exactly that many pieces, assigning them in edge order.
func (c *setupContext) fragmentUnspecifiedSubnets() error {
	var unspecified []int
	for i, e := range c.cfg.EdgeNodes {
		if e.VirtualSubnet == "" {
			unspecified = append(unspecified, i)
			continue
		}
		sub, err := ipv4.ParseCIDR(e.VirtualSubnet)
		if err != nil {
			return fmt.Errorf("setup: edge %d: %w", i, err)
		}
		c.edges[i].virtualSubnet = sub
	}
	if len(unspecified) == 0 {
		return nil
	}
	global, err := ipv4.ParseCIDR(c.cfg.EdgeNodeDefaults.GlobalVirtualSubnet)
	if err != nil {
		return fmt.Errorf("setup: edgeNodeDefaults.globalVirtualSubnet: %w", err)
	}
	frags, err := ipv4.FragmentSubnet(global, len(unspecified))
	if err != nil {
		return err
	}
	for i, edgeIdx := range unspecified {
		c.edges[edgeIdx].virtualSubnet = frags[i]
	}
	return nil
}

// logEdgeTable logs the final, fully-defaulted edge table.
func (c *setupContext) logEdgeTable() error {
	for i, e := range c.edges {
		c.log.WithFields(logFields(
			"edge", i,
			"ip", e.ip.String(),
			"interface", e.intf,
			"mac", e.mac.String(),
			"virtualSubnet", e.virtualSubnet.String(),
		)).Info("setup: edge node resolved")
	}
	return nil
}
