// Package setup is the two-phase orchestrator tying the ipv4,
// macaddr, routeplan and graphml packages to a worker.Interface: it
// validates and defaults the edge-node list, instantiates the
// topology described by a GraphML document, and emits forwarding
// entries so that any pair of client hosts can reach each other along
// shortest paths.
package setup

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vnetcore/vnetcore/graphml"
	"github.com/vnetcore/vnetcore/ipv4"
	"github.com/vnetcore/vnetcore/macaddr"
	"github.com/vnetcore/vnetcore/routeplan"
	"github.com/vnetcore/vnetcore/worker"
)

// Run executes both phases of the orchestrator against cfg, reading
// the topology document from src, driving w, and logging through
// log (defaulting to logrus.StandardLogger() when nil). Every log line
// for this call carries a runID field so concurrent runs against a
// shared log stream stay distinguishable. Run returns the first fatal
// error encountered; cleanup always runs, on every exit path, before
// Run returns.
func Run(cfg Config, src io.Reader, w worker.Interface, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	entry := log.WithField("runID", uuid.New().String())

	ctx := &setupContext{cfg: cfg, worker: w, log: entry, nodeIdx: make(map[string]int)}

	defer ctx.cleanup()

	if err := w.Init(cfg.NsPrefix, cfg.OvsDir, cfg.OvsSchema, cfg.SoftMemCap); err != nil {
		return fmt.Errorf("setup: worker init: %w", err)
	}

	for _, stage := range phase1Stages(ctx) {
		if err := stage(); err != nil {
			return err
		}
	}
	for _, stage := range phase2Stages(ctx, src) {
		if err := stage(); err != nil {
			return err
		}
	}
	return nil
}

// setupContext is the single frame that owns every allocation for one
// Run call: edge table, node registry, address/fragment iterators,
// the route planner and the mac generator. All of it is released by
// cleanup regardless of how Run exits.
type setupContext struct {
	cfg    Config
	worker worker.Interface
	log    logrus.FieldLogger

	edges []edgeState

	nodeIdx map[string]int // external id -> dense id
	nodes   []nodeState

	addrIter *ipv4.AddrIter
	macGen   *macaddr.Generator

	acceptingLinks bool
	sawLink        bool
	clientCount    int
	clientsPerEdge float64

	planner *routeplan.Planner
}

// cleanup releases every resource the context holds, on all exit
// paths, mirroring spec.md's single-cleanup-path requirement.
func (c *setupContext) cleanup() {
	c.addrIter = nil
	c.planner = nil
	c.nodeIdx = nil
	c.nodes = nil
	if c.worker != nil {
		if err := c.worker.Cleanup(); err != nil {
			c.log.WithError(err).Warn("setup: worker cleanup failed")
		}
	}
}
