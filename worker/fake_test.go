package worker

import "testing"

func TestFakeInterfaceRecordsCalls(t *testing.T) {
	f := NewFakeInterface()
	if err := f.Init("vnet", "/tmp/ovs", "schema", 1<<20); err != nil {
		t.Fatal(err)
	}
	if !f.Initialized {
		t.Fatal("expected Initialized to be true")
	}

	p1, err := f.AddEdgeInterface("eth0")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := f.AddEdgeInterface("eth0")
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Fatalf("expected the same interface to share a port, got %d and %d", p1, p2)
	}

	p3, err := f.AddEdgeInterface("eth1")
	if err != nil {
		t.Fatal(err)
	}
	if p3 == p1 {
		t.Fatal("expected distinct interfaces to get distinct ports")
	}

	if err := f.AddHost(0, 0, nil, HostMeta{}); err != nil {
		t.Fatal(err)
	}
	n, err := f.DestroyHosts()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 destroyed host, got %d", n)
	}

	if err := f.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if !f.CleanupCalled {
		t.Fatal("expected CleanupCalled to be true")
	}
}

func TestFakeInterfaceUnscriptedMacFails(t *testing.T) {
	f := NewFakeInterface()
	if _, err := f.GetEdgeRemoteMac("eth0", 0); err == nil {
		t.Fatal("expected error for unscripted remote mac")
	}
}
