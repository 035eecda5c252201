// Package types provides type definitions for structured data shared across the proof fetch service.
package types

// ProgramLabel is reported for every proof. The explorer page does not expose program identity.
const ProgramLabel = "zkVM_proof"

// Proof status labels recognised by the normalizer.
const (
	StatusFulfilled = "fulfilled"
	StatusAssigned  = "assigned"
)

// RawRow holds the text of the latest row of the explorer table, cell by cell.
// Missing cells carry sentinel defaults instead of empty strings.
type RawRow struct {
	Status     string `json:"status"`
	ID         string `json:"id"`
	Requester  string `json:"requester"`
	Prover     string `json:"prover"`
	Gas        string `json:"gas"`
	Duration   string `json:"duration"`
	CreatedAgo string `json:"created_ago"`
}

// Sentinel values used when a row cell is missing.
const (
	DefaultUnknown    = "unknown"
	DefaultGas        = "0"
	DefaultDuration   = "0s"
	DefaultCreatedAgo = "recently"
)

// RawRowFromFields assigns fields positionally in table column order,
// filling anything past the end of fields with the sentinel defaults.
func RawRowFromFields(fields []string) RawRow {
	at := func(i int, def string) string {
		if i < len(fields) && fields[i] != "" {
			return fields[i]
		}
		return def
	}
	return RawRow{
		Status:     at(0, DefaultUnknown),
		ID:         at(1, DefaultUnknown),
		Requester:  at(2, DefaultUnknown),
		Prover:     at(3, DefaultUnknown),
		Gas:        at(4, DefaultGas),
		Duration:   at(5, DefaultDuration),
		CreatedAgo: at(6, DefaultCreatedAgo),
	}
}

// ProofRecord is the canonical proof shape served to the visualization front-end.
type ProofRecord struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Program   string `json:"program"`
	Cycles    int64  `json:"cycles"`
	Gas       string `json:"gas"`
	Duration  string `json:"duration"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Prover    string `json:"prover"`
	Requester string `json:"requester"`

	// Synthetic marks records produced by the fallback generator. Never serialized.
	Synthetic bool `json:"-"`
}

// LatestProofResponse is the body of GET /explorer/latest-proof/{prover}.
type LatestProofResponse struct {
	Proof *ProofRecord `json:"proof"`
}

// Cache states reported by the health probe.
const (
	CacheWarm = "warm"
	CacheCold = "cold"
)

// LastFetchNever is reported by the health probe before the first successful fetch.
const LastFetchNever = "never"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Cache     string `json:"cache"`
	LastFetch string `json:"lastFetch"`
}

// ErrorResponse is returned by the latest-proof endpoint when the failure policy is "error".
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
