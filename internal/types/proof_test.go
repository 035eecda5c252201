package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRowFromFields(t *testing.T) {
	tests := []struct {
		name     string
		fields   []string
		expected RawRow
	}{
		{
			name:   "full row",
			fields: []string{"Fulfilled", "0xabc", "0xreq", "0xprov", "1.2M", "37s", "1 minute ago"},
			expected: RawRow{
				Status: "Fulfilled", ID: "0xabc", Requester: "0xreq", Prover: "0xprov",
				Gas: "1.2M", Duration: "37s", CreatedAgo: "1 minute ago",
			},
		},
		{
			name:   "five tokens",
			fields: []string{"Fulfilled", "0xabc", "0xreq", "0xprov", "1.2M"},
			expected: RawRow{
				Status: "Fulfilled", ID: "0xabc", Requester: "0xreq", Prover: "0xprov",
				Gas: "1.2M", Duration: DefaultDuration, CreatedAgo: DefaultCreatedAgo,
			},
		},
		{
			name:   "empty",
			fields: nil,
			expected: RawRow{
				Status: DefaultUnknown, ID: DefaultUnknown, Requester: DefaultUnknown, Prover: DefaultUnknown,
				Gas: DefaultGas, Duration: DefaultDuration, CreatedAgo: DefaultCreatedAgo,
			},
		},
		{
			name:   "blank cell takes default",
			fields: []string{"", "0xabc"},
			expected: RawRow{
				Status: DefaultUnknown, ID: "0xabc", Requester: DefaultUnknown, Prover: DefaultUnknown,
				Gas: DefaultGas, Duration: DefaultDuration, CreatedAgo: DefaultCreatedAgo,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RawRowFromFields(tt.fields))
		})
	}
}

func TestProofRecord_SyntheticNotSerialized(t *testing.T) {
	rec := ProofRecord{ID: "0x1", Status: StatusFulfilled, Program: ProgramLabel, Synthetic: true}

	data, err := json.Marshal(LatestProofResponse{Proof: &rec})
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded["proof"], "Synthetic")
	assert.NotContains(t, decoded["proof"], "synthetic")
	assert.Equal(t, "zkVM_proof", decoded["proof"]["program"])
}
