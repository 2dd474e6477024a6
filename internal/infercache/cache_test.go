package infercache

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rpattn/rentroll/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func detectionFixture(confidence float64) domain.HeaderDetection {
	return domain.HeaderDetection{
		HeaderRowIndex:    0,
		DataStartRowIndex: 1,
		Headers:           map[int]string{0: "Unit", 1: "Rent"},
		ColumnMapping: map[domain.CanonicalField]int{
			domain.FieldUnitNumber:  0,
			domain.FieldCurrentRent: 1,
		},
		Confidence: confidence,
	}
}

func TestSetThenGetReturnsValue(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[domain.HeaderDetection](time.Hour, clock.Now)

	want := detectionFixture(0.9)
	cache.Set("k1", want)

	got, ok := cache.Get("k1")
	if !ok {
		t.Fatalf("expected hit for k1")
	}
	if got.DataStartRowIndex != want.DataStartRowIndex || got.Confidence != want.Confidence {
		t.Fatalf("cached detection mismatch: %+v", got)
	}
}

func TestGetEvictsExpiredEntry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[domain.HeaderDetection](time.Hour, clock.Now)

	cache.Set("k1", detectionFixture(0.9))
	if stats := cache.Stats(); stats.Size != 1 {
		t.Fatalf("expected size 1 after set, got %d", stats.Size)
	}

	clock.Advance(time.Hour + time.Second)

	if _, ok := cache.Get("k1"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if stats := cache.Stats(); stats.Size != 0 {
		t.Fatalf("expected expired entry to be evicted on read, size=%d", stats.Size)
	}
}

func TestEntryValidAtExactExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[domain.HeaderDetection](time.Hour, clock.Now)

	cache.Set("k1", detectionFixture(0.9))
	clock.Advance(time.Hour)

	if _, ok := cache.Get("k1"); !ok {
		t.Fatalf("entry should still be valid at now == expiresAt")
	}
}

func TestSetReplacesExisting(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[domain.HeaderDetection](time.Hour, clock.Now)

	cache.Set("k1", detectionFixture(0.5))
	cache.Set("k1", detectionFixture(0.9))

	got, ok := cache.Get("k1")
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.Confidence != 0.9 {
		t.Fatalf("expected last writer to win, got confidence %.2f", got.Confidence)
	}
	if stats := cache.Stats(); stats.Size != 1 {
		t.Fatalf("replace should not grow the cache, size=%d", stats.Size)
	}
}

func TestSetSweepsExpiredEntries(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[domain.HeaderDetection](time.Hour, clock.Now)

	cache.Set("old1", detectionFixture(0.5))
	cache.Set("old2", detectionFixture(0.5))
	clock.Advance(2 * time.Hour)
	cache.Set("fresh", detectionFixture(0.9))

	stats := cache.Stats()
	if stats.Size != 1 {
		t.Fatalf("expected sweep on set to drop expired entries, size=%d keys=%v", stats.Size, stats.Keys)
	}
	if stats.Keys[0] != "fresh" {
		t.Fatalf("expected only fresh key to survive, got %v", stats.Keys)
	}
}

func TestHitDoesNotExtendExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[domain.HeaderDetection](time.Hour, clock.Now)

	cache.Set("k1", detectionFixture(0.9))
	clock.Advance(59 * time.Minute)
	if _, ok := cache.Get("k1"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := cache.Get("k1"); ok {
		t.Fatalf("a hit must not slide the TTL")
	}
}

func TestClearAndStats(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[domain.HeaderDetection](time.Hour, clock.Now)

	cache.Set("a", detectionFixture(0.1))
	cache.Set("b", detectionFixture(0.2))

	stats := cache.Stats()
	if stats.Size != 2 {
		t.Fatalf("expected size 2, got %d", stats.Size)
	}
	sort.Strings(stats.Keys)
	if stats.Keys[0] != "a" || stats.Keys[1] != "b" {
		t.Fatalf("unexpected keys: %v", stats.Keys)
	}

	cache.Clear()
	if stats := cache.Stats(); stats.Size != 0 {
		t.Fatalf("expected empty cache after clear, size=%d", stats.Size)
	}
}

func TestNilCacheDegradesToMiss(t *testing.T) {
	var cache *Cache[domain.HeaderDetection]

	if _, ok := cache.Get("k"); ok {
		t.Fatalf("nil cache should report misses")
	}
	cache.Set("k", detectionFixture(0.9))
	cache.Clear()
	if stats := cache.Stats(); stats.Size != 0 {
		t.Fatalf("nil cache stats should be empty")
	}
}

func TestConcurrentAccess(t *testing.T) {
	cache := New[domain.HeaderDetection](time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + n))
				cache.Set(key, detectionFixture(0.5))
				cache.Get(key)
				cache.Stats()
			}
		}(i)
	}
	wg.Wait()

	if stats := cache.Stats(); stats.Size != 8 {
		t.Fatalf("expected 8 distinct keys, got %d", stats.Size)
	}
}
