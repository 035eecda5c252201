// Package schemas provides JSON Schema validation of the service's API payloads.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// LatestProofSchema is the contract of GET /explorer/latest-proof/{prover}
// that the visualization front-end relies on.
//
//go:embed latest_proof.schema.json
var LatestProofSchema string

var latestProof = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(LatestProofSchema))
})

// ContractError lists the places where a body breaks the latest-proof contract,
// each as "field: description".
type ContractError struct {
	Violations []string
}

func (e *ContractError) Error() string {
	return "latest-proof contract violated: " + strings.Join(e.Violations, "; ")
}

// ValidateLatestProof checks a latest-proof response body against the embedded
// schema. Bodies that are not JSON fail with a plain error; schema violations
// fail with *ContractError.
func ValidateLatestProof(body []byte) error {
	schema, err := latestProof()
	if err != nil {
		return fmt.Errorf("compile latest-proof schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.Field()+": "+desc.Description())
	}
	return &ContractError{Violations: violations}
}
