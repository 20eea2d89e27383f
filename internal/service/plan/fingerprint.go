package plan

import (
	"encoding/json"
	"fmt"

	"github.com/kapu/fitplan-engine-go/internal/domain"
)

// Fingerprint is the plan cache key: the kind, a colon, then the normalized
// request fields as JSON. encoding/json writes map keys in sorted order, so
// field order in the request never changes the key.
func Fingerprint(kind domain.PlanKind, fields map[string]any) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s request: %w", kind, err)
	}
	return kind.String() + ":" + string(data), nil
}
