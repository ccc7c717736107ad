package ipv4

import "testing"

// Scenario D from the spec.
func TestFragmentSubnetExactSplit(t *testing.T) {
	parent, _ := ParseCIDR("10.0.0.0/24")
	frags, err := FragmentSubnet(parent, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"10.0.0.0/25", "10.0.0.128/26", "10.0.0.192/26"}
	if len(frags) != len(want) {
		t.Fatalf("got %d fragments, want %d", len(frags), len(want))
	}
	for i, w := range want {
		if frags[i].String() != w {
			t.Fatalf("fragment %d: got %s, want %s", i, frags[i], w)
		}
	}
}

func TestFragmentSubnetTooSmall(t *testing.T) {
	parent, _ := ParseCIDR("10.0.0.0/32") // size 1
	if _, err := FragmentSubnet(parent, 2); err == nil {
		t.Fatal("expected SubnetTooSmall error")
	}
}

// Invariant: for any (P,N) with size>=N, fragments partition P exactly.
func TestFragmentSubnetPartitionsCover(t *testing.T) {
	cases := []struct {
		cidr string
		n    int
	}{
		{"10.0.0.0/24", 1},
		{"10.0.0.0/24", 2},
		{"10.0.0.0/24", 3},
		{"10.0.0.0/24", 5},
		{"10.0.0.0/24", 7},
		{"10.0.0.0/16", 10},
		{"10.0.0.0/20", 13},
	}
	for _, c := range cases {
		parent, _ := ParseCIDR(c.cidr)
		frags, err := FragmentSubnet(parent, c.n)
		if err != nil {
			t.Fatalf("%s/%d: %v", c.cidr, c.n, err)
		}
		if len(frags) != c.n {
			t.Fatalf("%s/%d: got %d fragments", c.cidr, c.n, len(frags))
		}
		var total uint64
		for i, f := range frags {
			total += f.Size()
			// alignment: base address must be a multiple of its own size
			if uint32(f.Addr())%uint32(f.Size()) != 0 {
				t.Fatalf("%s/%d: fragment %d not aligned: %s", c.cidr, c.n, i, f)
			}
			if i > 0 {
				prev := frags[i-1]
				if prev.Addr().Add(uint32(prev.Size())) != f.Addr() {
					t.Fatalf("%s/%d: fragments not contiguous at %d: %s then %s", c.cidr, c.n, i, prev, f)
				}
				if prev.Overlaps(f) {
					t.Fatalf("%s/%d: fragments %d and %d overlap", c.cidr, c.n, i-1, i)
				}
			}
		}
		if total != parent.Size() {
			t.Fatalf("%s/%d: sizes sum to %d, want %d", c.cidr, c.n, total, parent.Size())
		}
	}
}

func TestFragmentIterProducesExactlyN(t *testing.T) {
	parent, _ := ParseCIDR("10.0.0.0/24")
	it, err := NewFragmentIter(parent, 4)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4 fragments, got %d", count)
	}
	// (N+1)-th call must also report done.
	if _, ok := it.Next(); ok {
		t.Fatal("expected iterator to stay exhausted")
	}
}
