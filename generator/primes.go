package generator

import (
	"github.com/Swind/go-longtask/core"
	"github.com/dustin/go-humanize"
)

// PrimeLimit is the exclusive upper bound of the prime computation.
const PrimeLimit = 50000

// generateLongTaskLabel names the time/timeEnd bracket.
const generateLongTaskLabel = "generateLongTask"

// Primes returns every prime in [2, limit) by trial division up to the square
// root of each candidate.
func Primes(limit int) []int {
	var primes []int
	for n := 2; n < limit; n++ {
		if isPrime(n) {
			primes = append(primes, n)
		}
	}
	return primes
}

func isPrime(n int) bool {
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// Generator runs the prime-count long task and reports to a Console.
type Generator struct {
	console *Console
}

// New returns a Generator writing to console. A nil console discards output.
func New(console *Console) *Generator {
	if console == nil {
		console = NewConsole(nil)
	}
	return &Generator{console: console}
}

// GenerateLongTask computes the primes below PrimeLimit inside a timing
// bracket, logs how many were found and returns the count.
func (g *Generator) GenerateLongTask() int {
	g.console.Time(generateLongTaskLabel)
	primes := Primes(PrimeLimit)
	g.console.TimeEnd(generateLongTaskLabel)

	count := len(primes)
	g.console.Info("Found "+humanize.Comma(int64(count))+" primes",
		core.F("count", count),
		core.F("limit", PrimeLimit),
	)
	return count
}

// std is set once at package init and never replaced.
var std = New(NewConsole(core.NewDefaultLogger()))

// GenerateLongTask runs the prime-count task on the package default
// generator, which logs through a production zap logger.
func GenerateLongTask() int {
	return std.GenerateLongTask()
}
