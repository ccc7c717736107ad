package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
nsPrefix: vnet
ovsDir: /var/lib/ovs
ovsSchema: vswitch
softMemCap: 1048576
edgeNodes:
  - ip: 10.0.0.1
    interface: eth0
    mac: "aa:aa:aa:aa:aa:aa"
    virtualSubnet: 192.168.0.0/24
edgeNodeDefaults:
  interface: eth0
  globalVirtualSubnet: 10.10.0.0/16
srcFile: topology.graphml
graphML:
  twoPass: false
  clientType: host
  weightKey: latency
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NsPrefix != "vnet" {
		t.Fatalf("unexpected nsPrefix: %s", cfg.NsPrefix)
	}
	if len(cfg.EdgeNodes) != 1 || cfg.EdgeNodes[0].IP != "10.0.0.1" {
		t.Fatalf("unexpected edge nodes: %+v", cfg.EdgeNodes)
	}
	if cfg.GraphML.ClientType != "host" {
		t.Fatalf("unexpected clientType: %s", cfg.GraphML.ClientType)
	}
	if cfg.SoftMemCap != 1048576 {
		t.Fatalf("unexpected softMemCap: %d", cfg.SoftMemCap)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("not: [valid: yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
