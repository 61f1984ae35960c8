package archive_test

import (
	"sync"
	"testing"

	"github.com/zoobzio/archive"
)

type CacheTestUser struct {
	Name string
	Age  uint8
}

func TestUse_Caching(t *testing.T) {
	archive.Reset()

	p1, err := archive.Use[CacheTestUser]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	p2, err := archive.Use[CacheTestUser]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	if p1 != p2 {
		t.Error("Use() should return cached processor")
	}
}

func TestUse_DifferentTypes(t *testing.T) {
	archive.Reset()

	p1, err := archive.Use[CacheTestUser]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}
	p2, err := archive.Use[[]CacheTestUser]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	if p1.Category() != archive.CategoryTuple {
		t.Errorf("Category() = %v, want tuple", p1.Category())
	}
	if p2.Category() != archive.CategorySequence {
		t.Errorf("Category() = %v, want sequence", p2.Category())
	}
}

func TestUse_UnsupportedNotCached(t *testing.T) {
	archive.Reset()

	type broken struct {
		Fn func()
	}
	if _, err := archive.Use[broken](); err == nil {
		t.Fatal("Use() should fail for an unsupported member")
	}
	if _, err := archive.Use[broken](); err == nil {
		t.Fatal("Use() should fail again, not return a cached processor")
	}
}

func TestReset(t *testing.T) {
	archive.Reset()

	p1, err := archive.Use[CacheTestUser]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	archive.Reset()

	p2, err := archive.Use[CacheTestUser]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	if p1 == p2 {
		t.Error("Reset() should clear the cache")
	}
}

func TestUse_Concurrent(t *testing.T) {
	archive.Reset()

	const goroutines = 16
	procs := make([]*archive.Processor[CacheTestUser], goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := archive.Use[CacheTestUser]()
			if err != nil {
				t.Errorf("Use() error: %v", err)
				return
			}
			procs[i] = p
		}()
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if procs[i] != procs[0] {
			t.Fatalf("goroutine %d got a different processor", i)
		}
	}
}
