package lark

import "testing"

func TestSign_KnownVectors(t *testing.T) {
	got := Sign("abc", 1700000000)
	want := "VIS10b0EBvzzSdFnuk4tznEmK5wHaruvf/WnViv2yR4="
	if got != want {
		t.Errorf("Sign(abc, 1700000000) = %q, want %q", got, want)
	}

	got = Sign("test-secret", 1609459200)
	want = "IJ7Pt6eu2c5vM3gkse4crVb6MwgNFSqbEX+fqcT5kX8="
	if got != want {
		t.Errorf("Sign(test-secret, 1609459200) = %q, want %q", got, want)
	}
}

func TestSign_Deterministic(t *testing.T) {
	first := Sign("s3cr3t", 1700000000)
	for i := 0; i < 5; i++ {
		if got := Sign("s3cr3t", 1700000000); got != first {
			t.Fatalf("Sign not deterministic: %q != %q", got, first)
		}
	}
}

func TestSign_VariesWithInputs(t *testing.T) {
	base := Sign("abc", 1700000000)
	if Sign("abd", 1700000000) == base {
		t.Error("different secrets should produce different signatures")
	}
	if Sign("abc", 1700000001) == base {
		t.Error("different timestamps should produce different signatures")
	}
}
