package naming

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAllocateRandom_LengthAndAlphabet(t *testing.T) {
	dir := t.TempDir()
	var alloc AlphanumericAllocator

	for _, length := range []int{1, 8, 10, 32} {
		name, err := alloc.Allocate(dir, length)
		if err != nil {
			t.Fatalf("Allocate(length=%d) error: %v", length, err)
		}
		if len(name) != length {
			t.Errorf("Allocate(length=%d) = %q (len %d)", length, name, len(name))
		}
		for _, c := range name {
			if !strings.ContainsRune(alphabet, c) {
				t.Errorf("name %q contains %q outside the base-62 alphabet", name, c)
			}
		}
	}
}

func TestAllocateRandom_InvalidLength(t *testing.T) {
	var alloc AlphanumericAllocator
	if _, err := alloc.Allocate(t.TempDir(), 0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestAllocateRandom_WidensOnExhaustion(t *testing.T) {
	// Occupy the entire length-1 namespace so the allocator has to widen.
	dir := t.TempDir()
	for _, c := range alphabet {
		if err := os.Mkdir(filepath.Join(dir, string(c)), 0755); err != nil {
			t.Fatal(err)
		}
	}

	alloc := AlphanumericAllocator{Retries: 4}
	name, err := alloc.Allocate(dir, 1)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if len(name) < 2 {
		t.Errorf("expected widened name, got %q", name)
	}
}

func TestAllocateRandomDir_Creates(t *testing.T) {
	dir := t.TempDir()
	var alloc AlphanumericAllocator

	created, err := alloc.AllocateDir(dir, 10)
	if err != nil {
		t.Fatalf("AllocateDir() error: %v", err)
	}
	info, err := os.Stat(created)
	if err != nil || !info.IsDir() {
		t.Fatalf("allocated directory missing: %v", err)
	}
	if len(filepath.Base(created)) != 10 {
		t.Errorf("unexpected name length for %q", created)
	}
}
