package worker

import (
	"fmt"

	"github.com/vnetcore/vnetcore/ipv4"
	"github.com/vnetcore/vnetcore/macaddr"
)

// FakeInterface is an in-memory Interface implementation for tests and
// for the CLI's `up --dry-run`: it
// records every call instead of touching the kernel, so orchestrator
// tests can assert on exactly what was registered.
type FakeInterface struct {
	Initialized bool
	NsPrefix    string

	Roots         [][2]ipv4.Addr
	Interfaces    map[string]int
	nextPort      int
	EdgeRoutes    []EdgeRouteCall
	Hosts         []HostCall
	Links         []LinkCall
	SelfLinks     []int
	ClientRoutes  []ClientRouteCall
	InternalRoutes []InternalRouteCall

	DestroyedCount int
	CleanupCalled  bool

	// RemoteMacs and LocalMacs let tests script discovery results
	// keyed by "intf" or "intf|ip".
	RemoteMacs map[string]macaddr.Addr
	LocalMacs  map[string]macaddr.Addr
}

type EdgeRouteCall struct {
	Subnet    ipv4.Subnet
	Port      int
	LocalMac  macaddr.Addr
	RemoteMac macaddr.Addr
}

type HostCall struct {
	ID   int
	Addr ipv4.Addr
	Macs []macaddr.Addr
	Meta HostMeta
}

type LinkCall struct {
	U, V   int
	IPU    ipv4.Addr
	IPV    ipv4.Addr
	Macs   []macaddr.Addr
	Meta   LinkMeta
}

type ClientRouteCall struct {
	ID       int
	Macs     []macaddr.Addr
	Subnet   ipv4.Subnet
	EdgePort int
}

type InternalRouteCall struct {
	U, V              int
	IPU, IPV          ipv4.Addr
	SrcSubnet, DstSubnet ipv4.Subnet
}

// NewFakeInterface returns an empty FakeInterface ready to record.
func NewFakeInterface() *FakeInterface {
	return &FakeInterface{
		Interfaces: make(map[string]int),
		RemoteMacs: make(map[string]macaddr.Addr),
		LocalMacs:  make(map[string]macaddr.Addr),
	}
}

func (f *FakeInterface) Init(nsPrefix, ovsDir, ovsSchema string, softMemCap int64) error {
	f.Initialized = true
	f.NsPrefix = nsPrefix
	return nil
}

func (f *FakeInterface) DestroyHosts() (int, error) {
	f.DestroyedCount = len(f.Hosts)
	return f.DestroyedCount, nil
}

func (f *FakeInterface) GetEdgeRemoteMac(intf string, ip ipv4.Addr) (macaddr.Addr, error) {
	key := fmt.Sprintf("%s|%s", intf, ip)
	mac, ok := f.RemoteMacs[key]
	if !ok {
		return macaddr.Addr{}, fmt.Errorf("worker: no scripted remote mac for %s", key)
	}
	return mac, nil
}

func (f *FakeInterface) GetEdgeLocalMac(intf string) (macaddr.Addr, error) {
	mac, ok := f.LocalMacs[intf]
	if !ok {
		return macaddr.Addr{}, fmt.Errorf("worker: no scripted local mac for %s", intf)
	}
	return mac, nil
}

func (f *FakeInterface) AddRoot(a, b ipv4.Addr) error {
	f.Roots = append(f.Roots, [2]ipv4.Addr{a, b})
	return nil
}

func (f *FakeInterface) AddEdgeInterface(intf string) (int, error) {
	if port, ok := f.Interfaces[intf]; ok {
		return port, nil
	}
	port := f.nextPort
	f.nextPort++
	f.Interfaces[intf] = port
	return port, nil
}

func (f *FakeInterface) AddEdgeRoutes(subnet ipv4.Subnet, port int, localMac, remoteMac macaddr.Addr) error {
	f.EdgeRoutes = append(f.EdgeRoutes, EdgeRouteCall{subnet, port, localMac, remoteMac})
	return nil
}

func (f *FakeInterface) AddHost(id int, addr ipv4.Addr, macs []macaddr.Addr, meta HostMeta) error {
	f.Hosts = append(f.Hosts, HostCall{id, addr, macs, meta})
	return nil
}

func (f *FakeInterface) AddLink(u, v int, ipU, ipV ipv4.Addr, macs []macaddr.Addr, meta LinkMeta) error {
	f.Links = append(f.Links, LinkCall{u, v, ipU, ipV, macs, meta})
	return nil
}

func (f *FakeInterface) SetSelfLink(id int, meta LinkMeta) error {
	f.SelfLinks = append(f.SelfLinks, id)
	return nil
}

func (f *FakeInterface) AddClientRoutes(id int, macs []macaddr.Addr, subnet ipv4.Subnet, edgePort int) error {
	f.ClientRoutes = append(f.ClientRoutes, ClientRouteCall{id, macs, subnet, edgePort})
	return nil
}

func (f *FakeInterface) AddInternalRoutes(u, v int, ipU, ipV ipv4.Addr, srcSubnet, dstSubnet ipv4.Subnet) error {
	f.InternalRoutes = append(f.InternalRoutes, InternalRouteCall{u, v, ipU, ipV, srcSubnet, dstSubnet})
	return nil
}

func (f *FakeInterface) EnsureSystemScaling(maxLinks, nodes, clients int) error {
	return nil
}

func (f *FakeInterface) Cleanup() error {
	f.CleanupCalled = true
	return nil
}

var _ Interface = (*FakeInterface)(nil)
