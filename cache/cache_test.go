package cache

import (
	"sync"
	"testing"
)

func TestCache_GetSet(t *testing.T) {
	c := New[string, int](2)

	if _, ok := c.Get("a"); ok {
		t.Error("Get on empty cache returned ok")
	}

	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	// a was used last, so b is evicted
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d; want 2", c.Len())
	}

	s := c.Stats()
	if s.Evicts != 1 {
		t.Errorf("Evicts = %d; want 1", s.Evicts)
	}
	if s.Hits != 1 || s.Misses != 2 {
		t.Errorf("Hits/Misses = %d/%d; want 1/2", s.Hits, s.Misses)
	}
}

func TestCache_Update(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("a", 5)

	if v, _ := c.Get("a"); v != 5 {
		t.Errorf("Get(a) = %d; want 5", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d; want 1", c.Len())
	}
}

func TestCache_GetOrSet(t *testing.T) {
	c := New[string, int](0)
	calls := 0
	fn := func() int { calls++; return 42 }

	if v := c.GetOrSet("k", fn); v != 42 {
		t.Errorf("GetOrSet() = %d; want 42", v)
	}
	c.GetOrSet("k", fn)
	if calls != 1 {
		t.Errorf("fn called %d times; want 1", calls)
	}
	if c.Stats().Capacity != 100 {
		t.Errorf("Capacity = %d; want default 100", c.Stats().Capacity)
	}
}

func TestCache_Clear(t *testing.T) {
	c := New[int, int](4)
	for i := 0; i < 4; i++ {
		c.Set(i, i)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d; want 0", c.Len())
	}
}

func TestStats_HitRate(t *testing.T) {
	if r := (Stats{}).HitRate(); r != 0 {
		t.Errorf("HitRate() = %f; want 0", r)
	}
	if r := (Stats{Hits: 3, Misses: 1}).HitRate(); r != 0.75 {
		t.Errorf("HitRate() = %f; want 0.75", r)
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int, int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Set((g*i)%32, i)
				c.Get(i % 32)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len() = %d; exceeds capacity", c.Len())
	}
}
