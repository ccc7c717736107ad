package ipv4

import "testing"

// Scenario E from the spec: iterate 10.0.0.0/30 avoiding 10.0.0.1/32.
func TestAddrIterAvoidSingle(t *testing.T) {
	parent, _ := ParseCIDR("10.0.0.0/30")
	avoid, _ := ParseCIDR("10.0.0.1/32")
	it := NewAddrIter(parent, []Subnet{avoid})

	var got []string
	for {
		a, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, a.String())
	}
	want := []string{"10.0.0.0", "10.0.0.2", "10.0.0.3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// Boundary: a /0 iterator must never yield an address inside any of
// the restricted ranges, regardless of how many addresses that implies.
func TestAddrIterRestrictedRangesNeverYielded(t *testing.T) {
	parent, _ := ParseCIDR("0.0.0.0/0")
	a1, _ := ParseCIDR("0.0.0.0/8")
	a2, _ := ParseCIDR("127.0.0.0/8")
	a3, _ := ParseCIDR("255.255.255.255/32")
	it := NewAddrIter(parent, []Subnet{a3, a1, a2}) // deliberately unsorted

	for i := 0; i < 5000; i++ {
		addr, ok := it.Next()
		if !ok {
			break
		}
		if a1.Contains(addr) || a2.Contains(addr) || a3.Contains(addr) {
			t.Fatalf("iterator yielded restricted address %s", addr)
		}
	}
}

func TestAddrIterCompleteness(t *testing.T) {
	parent, _ := ParseCIDR("10.0.0.0/28") // 16 addresses
	avoidA, _ := ParseCIDR("10.0.0.4/30") // .4-.7
	avoidB, _ := ParseCIDR("10.0.0.6/31") // .6-.7, nested in avoidA

	it := NewAddrIter(parent, []Subnet{avoidB, avoidA})
	seen := map[string]bool{}
	for {
		a, ok := it.Next()
		if !ok {
			break
		}
		if seen[a.String()] {
			t.Fatalf("duplicate address %s", a)
		}
		seen[a.String()] = true
	}
	if len(seen) != 12 { // 16 - 4 avoided
		t.Fatalf("expected 12 addresses, got %d", len(seen))
	}
	for _, avoided := range []string{"10.0.0.4", "10.0.0.5", "10.0.0.6", "10.0.0.7"} {
		if seen[avoided] {
			t.Fatalf("address %s should have been avoided", avoided)
		}
	}
}

func TestAddrIterNoAvoid(t *testing.T) {
	parent, _ := ParseCIDR("10.0.0.0/30")
	it := NewAddrIter(parent, nil)
	count := 0
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4, got %d", count)
	}
}
