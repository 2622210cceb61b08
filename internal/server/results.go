package server

import (
	"encoding/json"
	"strings"

	"github.com/raysh454/thamos/internal/model"
)

func analyzerName(kind JobKind) string {
	switch kind {
	case JobAdvise:
		return "thoth-adviser"
	case JobProvenance:
		return "thoth-provenance-checker"
	case JobAnalyze:
		return "thoth-package-extract"
	default:
		return string(kind)
	}
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// adviseResult builds the advise document. The recommended stack pins what the
// client already locked, or echoes the requirements when nothing is locked.
func adviseResult(input *model.AdviseInput, recommendationType string) json.RawMessage {
	locked := input.ApplicationStack.RequirementsLock
	if locked == "" {
		locked = `{"_meta": {"hash": {}}, "default": {}, "develop": {}}`
	}
	return mustJSON(map[string]any{
		"report": map[string]any{
			"products": []map[string]any{{
				"project": map[string]any{
					"requirements":        input.ApplicationStack.Requirements,
					"requirements_locked": locked,
					"runtime_environment": input.RuntimeEnvironment,
				},
				"score": 0.0,
				"justification": []map[string]any{{
					"type":    "INFO",
					"message": "Resolved stack using recommendation type " + recommendationType,
				}},
			}},
			"stack_info": []map[string]any{},
		},
		"error":     false,
		"error_msg": nil,
	})
}

// provenanceResult reports one INFO entry per requirements line that looks like
// a package declaration.
func provenanceResult(input *model.ProvenanceInput) json.RawMessage {
	report := []map[string]any{}
	for _, line := range strings.Split(input.ApplicationStack.Requirements, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		name := strings.Trim(strings.TrimSpace(strings.SplitN(line, "=", 2)[0]), `"`)
		if name == "" || name == "url" || name == "name" || name == "verify_ssl" || name == "python_version" {
			continue
		}
		report = append(report, map[string]any{
			"type":    "INFO",
			"id":      "ARTIFACT-OK",
			"package": name,
			"message": "Package " + name + " found on a configured index",
		})
	}
	return mustJSON(map[string]any{
		"report":    report,
		"error":     false,
		"error_msg": nil,
	})
}

func imageResult(image string) json.RawMessage {
	return mustJSON(map[string]any{
		"image": image,
		"operating-system": map[string]any{
			"id":         "rhel",
			"version_id": "8",
		},
		"python-packages": []map[string]any{},
		"rpm-dependencies": []map[string]any{},
	})
}
