package ipv4

import "testing"

func TestParseAndFormat(t *testing.T) {
	addr, err := Parse("10.0.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if addr.String() != "10.0.0.1" {
		t.Fatalf("unexpected: %s", addr.String())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{"10.0.0", "10.0.0.0.1", "10.0.0.256", "not-an-ip", ""}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestCIDR(t *testing.T) {
	s, err := ParseCIDR("10.0.0.0/24")
	if err != nil {
		t.Fatal(err)
	}
	if s.String() != "10.0.0.0/24" {
		t.Fatalf("unexpected: %s", s)
	}
	if s.Size() != 256 {
		t.Fatalf("expected size 256, got %d", s.Size())
	}
	if s.Last().String() != "10.0.0.255" {
		t.Fatalf("unexpected last: %s", s.Last())
	}
}

func TestCanonicalization(t *testing.T) {
	addr, _ := Parse("10.0.0.5")
	s, err := NewSubnet(addr, 24)
	if err != nil {
		t.Fatal(err)
	}
	if s.String() != "10.0.0.0/24" {
		t.Fatalf("host bits not zeroed: %s", s)
	}
}

func TestParseCIDRErrors(t *testing.T) {
	cases := []string{"10.0.0.0", "10.0.0.0/33", "10.0.0.0/-1", "garbage"}
	for _, c := range cases {
		if _, err := ParseCIDR(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestContains(t *testing.T) {
	s, _ := ParseCIDR("10.0.0.0/24")
	inside, _ := Parse("10.0.0.200")
	outside, _ := Parse("10.0.1.1")
	if !s.Contains(inside) {
		t.Fatal("expected containment")
	}
	if s.Contains(outside) {
		t.Fatal("expected no containment")
	}
}

func TestOverlaps(t *testing.T) {
	a, _ := ParseCIDR("10.0.0.0/24")
	b, _ := ParseCIDR("10.0.0.128/25")
	c, _ := ParseCIDR("10.0.1.0/24")
	if !a.Overlaps(b) {
		t.Fatal("expected overlap (contained)")
	}
	if !b.Overlaps(a) {
		t.Fatal("expected overlap (reversed)")
	}
	if a.Overlaps(c) {
		t.Fatal("expected no overlap")
	}
}
