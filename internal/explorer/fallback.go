package explorer

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/types"
	"github.com/google/uuid"
)

// Fixed values of fallback records.
const (
	FallbackGas       = "1.2M"
	FallbackDuration  = "37s"
	FallbackRequester = "0x002f7a...20ee80"
	FallbackAge       = time.Minute

	MinFallbackCycles int64 = 500_000
	MaxFallbackCycles int64 = 2_500_000 // exclusive
)

// FallbackIDPattern matches ids produced by the fallback generator.
var FallbackIDPattern = regexp.MustCompile(`^0x[0-9a-f]{12}\.\.\.$`)

// FallbackGenerator produces plausible synthetic records for when the explorer
// cannot be scraped. Its output is marked Synthetic and is never cached.
type FallbackGenerator struct {
	now    func() time.Time
	cycles func() int64
}

// NewFallbackGenerator creates a generator using the wall clock and a random cycle count.
func NewFallbackGenerator(now func() time.Time) *FallbackGenerator {
	if now == nil {
		now = time.Now
	}
	return &FallbackGenerator{
		now: now,
		cycles: func() int64 {
			return MinFallbackCycles + rand.Int64N(MaxFallbackCycles-MinFallbackCycles)
		},
	}
}

// Generate returns a synthetic fulfilled proof for prover, dated one minute ago.
func (g *FallbackGenerator) Generate(prover string) types.ProofRecord {
	id := uuid.New()
	return types.ProofRecord{
		ID:        fmt.Sprintf("0x%x...", id[:6]),
		Status:    types.StatusFulfilled,
		Program:   types.ProgramLabel,
		Cycles:    g.cycles(),
		Gas:       FallbackGas,
		Duration:  FallbackDuration,
		Timestamp: g.now().Add(-FallbackAge).UnixMilli(),
		Prover:    prover,
		Requester: FallbackRequester,
		Synthetic: true,
	}
}
