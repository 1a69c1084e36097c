package canon

import "testing"

func TestCanonicalize_SortsKeysRecursively(t *testing.T) {
	in := map[string]any{
		"b": 1,
		"a": map[string]any{
			"z": 1,
			"y": 2,
		},
	}
	got, err := Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := `{"a":{"y":2,"z":1},"b":1}`
	if string(got) != want {
		t.Fatalf("Canonicalize() = %s, want %s", got, want)
	}
}

func TestCanonicalize_PreservesArrayOrder(t *testing.T) {
	in := map[string]any{"xs": []any{3, 1, 2}}
	got, err := Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := `{"xs":[3,1,2]}`
	if string(got) != want {
		t.Fatalf("Canonicalize() = %s, want %s", got, want)
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	in := map[string]any{"b": 1, "a": 2}
	first, err := Canonicalize(in)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	second, err := Canonicalize(first)
	if err != nil {
		t.Fatalf("Canonicalize (round 2): %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("canonical(parse(canonical(x))) != canonical(x): %s != %s", second, first)
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	payload := map[string]any{"title": "hello", "status": "draft"}
	c1, err := Checksum(payload)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	c2, err := Checksum(payload)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if c1 != c2 {
		t.Fatalf("Checksum not deterministic: %s != %s", c1, c2)
	}
	if len(c1) != 64 {
		t.Fatalf("Checksum length = %d, want 64", len(c1))
	}
}

func TestVerifyChecksum(t *testing.T) {
	payload := map[string]any{"a": 1}
	sum, err := Checksum(payload)
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	ok, err := VerifyChecksum(payload, sum)
	if err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	if !ok {
		t.Fatalf("VerifyChecksum() = false, want true")
	}

	ok, err = VerifyChecksum(map[string]any{"a": 2}, sum)
	if err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	if ok {
		t.Fatalf("VerifyChecksum() = true for drifted payload, want false")
	}
}
