package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/NoCritics/succinct-tesseract/internal/types"
)

// GasToCyclesFactor approximates cycles from displayed gas units.
const GasToCyclesFactor = 10

// gasPattern matches the first numeric run (thousands separators and decimal
// point allowed) and an optional unit suffix directly after it.
var gasPattern = regexp.MustCompile(`([0-9.,]+)([KMG])?`)

var gasMultipliers = map[string]float64{
	"":  1,
	"K": 1e3,
	"M": 1e6,
	"G": 1e9,
}

var firstInteger = regexp.MustCompile(`\d+`)

// timeUnits are scanned in order; the first keyword contained in the string wins.
var timeUnits = []struct {
	keyword string
	unit    time.Duration
}{
	{"second", time.Second},
	{"minute", time.Minute},
	{"hour", time.Hour},
	{"day", 24 * time.Hour},
}

// Normalize converts a raw table row into a ProofRecord for prover.
// Fields that cannot be interpreted fall back to defaults; the returned
// errors describe each fallback and are informational only.
func Normalize(row types.RawRow, prover string, now time.Time) (types.ProofRecord, []error) {
	var issues []error

	cycles, err := ParseGas(row.Gas)
	if err != nil {
		issues = append(issues, err)
	}
	timestamp, err := ParseTimeAgo(row.CreatedAgo, now)
	if err != nil {
		issues = append(issues, err)
	}

	return types.ProofRecord{
		ID:        row.ID,
		Status:    NormalizeStatus(row.Status),
		Program:   types.ProgramLabel,
		Cycles:    cycles,
		Gas:       row.Gas,
		Duration:  row.Duration,
		Timestamp: timestamp,
		Prover:    prover,
		Requester: row.Requester,
	}, issues
}

// NormalizeStatus maps a status cell to "fulfilled", "assigned", or the lowercased label.
func NormalizeStatus(status string) string {
	lower := strings.ToLower(status)
	switch {
	case strings.Contains(lower, types.StatusFulfilled):
		return types.StatusFulfilled
	case strings.Contains(lower, types.StatusAssigned):
		return types.StatusAssigned
	default:
		return lower
	}
}

// ParseGas converts a display string such as "1.2M" or "1,500K" into an approximate
// cycle count. Unparseable input yields 0 and a *ParseError.
func ParseGas(gas string) (int64, error) {
	str := strings.ToUpper(strings.TrimSpace(gas))
	match := gasPattern.FindStringSubmatch(str)
	if match == nil {
		return 0, &ParseError{Field: "gas", Input: gas}
	}

	num, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil || num < 0 {
		return 0, &ParseError{Field: "gas", Input: gas}
	}

	cycles := math.Round(num * gasMultipliers[match[2]] * GasToCyclesFactor)
	if cycles >= math.MaxInt64 {
		return math.MaxInt64, nil
	}
	return int64(cycles), nil
}

// ParseTimeAgo converts a relative time such as "5 minutes ago" into epoch
// milliseconds relative to now. Unrecognised strings resolve to now and a *ParseError.
// A unit without a number counts as one ("a minute ago").
func ParseTimeAgo(ago string, now time.Time) (int64, error) {
	nowMs := now.UnixMilli()
	str := strings.ToLower(ago)

	if strings.Contains(str, "just now") || strings.Contains(str, "recently") {
		return nowMs, nil
	}

	for _, u := range timeUnits {
		if !strings.Contains(str, u.keyword) {
			continue
		}
		n := int64(1)
		if digits := firstInteger.FindString(str); digits != "" {
			parsed, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				// Too large for int64; the subtraction below clamps anyway.
				parsed = math.MaxInt64
			}
			n = parsed
		}
		unitMs := u.unit.Milliseconds()
		if n > nowMs/unitMs {
			return 0, nil
		}
		return nowMs - n*unitMs, nil
	}

	return nowMs, &ParseError{Field: "created", Input: ago}
}
