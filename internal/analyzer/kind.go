package analyzer

import (
	"fmt"
	"strings"

	"github.com/raysh454/thamos/internal/model"
)

// Kind is the type of an analysis. It is derived from the analysis id and
// selects the status, log and result endpoints for the id's whole lifetime.
type Kind int

const (
	KindAdvise Kind = iota + 1
	KindProvenanceCheck
	KindImageAnalysis
)

func (k Kind) String() string {
	switch k {
	case KindAdvise:
		return "advise"
	case KindProvenanceCheck:
		return "provenance-check"
	case KindImageAnalysis:
		return "image-analysis"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Classify returns the kind of id. Prefixes are checked in a fixed order.
func Classify(id string) (Kind, error) {
	switch {
	case strings.HasPrefix(id, model.PrefixImageAnalysis):
		return KindImageAnalysis, nil
	case strings.HasPrefix(id, model.PrefixProvenanceCheck):
		return KindProvenanceCheck, nil
	case strings.HasPrefix(id, model.PrefixAdvise):
		return KindAdvise, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAnalysisKind, id)
	}
}
