package generator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Swind/go-longtask/core"
)

// primesBelow50000 is pi(50000).
const primesBelow50000 = 5133

// sieve is an independent Sieve of Eratosthenes over [2, limit).
func sieve(limit int) []int {
	composite := make([]bool, limit)
	var primes []int
	for i := 2; i < limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j < limit; j += i {
			composite[j] = true
		}
	}
	return primes
}

func TestPrimes_MatchesSieve(t *testing.T) {
	got := Primes(PrimeLimit)
	if diff := cmp.Diff(sieve(PrimeLimit), got); diff != "" {
		t.Fatalf("Primes(%d) mismatch (-sieve +got):\n%s", PrimeLimit, diff)
	}
}

func TestPrimes_SmallRanges(t *testing.T) {
	tests := []struct {
		limit int
		want  []int
	}{
		{0, nil},
		{2, nil},
		{3, []int{2}},
		{30, []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Primes(tt.limit)); diff != "" {
			t.Errorf("Primes(%d) mismatch (-want +got):\n%s", tt.limit, diff)
		}
	}
}

func TestGenerateLongTask_CountIsFixedAndDeterministic(t *testing.T) {
	g := New(nil)

	first := g.GenerateLongTask()
	if first != primesBelow50000 {
		t.Fatalf("GenerateLongTask() = %d, want %d", first, primesBelow50000)
	}
	if len(sieve(PrimeLimit)) != primesBelow50000 {
		t.Fatalf("reference sieve disagrees with %d", primesBelow50000)
	}
	for i := 0; i < 2; i++ {
		if got := g.GenerateLongTask(); got != first {
			t.Fatalf("call %d returned %d, want %d", i+2, got, first)
		}
	}
}

// TestGenerateLongTask_LogsTimingBracketAndCount verifies the two log records.
func TestGenerateLongTask_LogsTimingBracketAndCount(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	g := New(NewConsole(core.NewZapLogger(zap.New(obsCore))))

	g.GenerateLongTask()

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}

	bracket := entries[0]
	if bracket.Message != generateLongTaskLabel {
		t.Fatalf("bracket message = %q, want %q", bracket.Message, generateLongTaskLabel)
	}
	if _, ok := bracket.ContextMap()["elapsed"]; !ok {
		t.Fatal("bracket entry has no elapsed field")
	}

	count := entries[1]
	if count.Message != "Found 5,133 primes" {
		t.Fatalf("count message = %q", count.Message)
	}
	if count.Level != zapcore.InfoLevel {
		t.Fatalf("count level = %v, want info", count.Level)
	}
	if got := count.ContextMap()["count"]; got != int64(primesBelow50000) {
		t.Fatalf("count field = %v, want %d", got, primesBelow50000)
	}
}

func TestPackageGenerateLongTask(t *testing.T) {
	if got := GenerateLongTask(); got != primesBelow50000 {
		t.Fatalf("GenerateLongTask() = %d, want %d", got, primesBelow50000)
	}
}
