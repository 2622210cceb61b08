package model

// RequirementsFormatPipenv is the default format of application stacks.
const RequirementsFormatPipenv = "pipenv"

// PythonStack is the application stack submitted for advises and provenance checks.
type PythonStack struct {
	// Requirements holds the Pipfile content.
	Requirements string `json:"requirements"`

	// RequirementsLock holds the Pipfile.lock content. Empty when not locked yet.
	RequirementsLock string `json:"requirements_lock"`

	// RequirementsFormat is the format of Requirements (e.g. "pipenv").
	RequirementsFormat string `json:"requirements_format,omitempty"`
}

// OperatingSystem identifies the base operating system of a runtime environment.
type OperatingSystem struct {
	Name    string `json:"name,omitempty" mapstructure:"name" yaml:"name,omitempty"`
	Version string `json:"version,omitempty" mapstructure:"version" yaml:"version,omitempty"`
}

// Hardware describes the hardware a stack is going to run on.
type Hardware struct {
	CPUFamily *int   `json:"cpu_family,omitempty" mapstructure:"cpu_family" yaml:"cpu_family,omitempty"`
	CPUModel  *int   `json:"cpu_model,omitempty" mapstructure:"cpu_model" yaml:"cpu_model,omitempty"`
	GPUModel  string `json:"gpu_model,omitempty" mapstructure:"gpu_model" yaml:"gpu_model,omitempty"`
}

// RuntimeEnvironment describes where the application runs. It is both a
// configuration entry and a request payload.
type RuntimeEnvironment struct {
	Name                string           `json:"name,omitempty" mapstructure:"name" yaml:"name,omitempty"`
	OperatingSystem     *OperatingSystem `json:"operating_system,omitempty" mapstructure:"operating_system" yaml:"operating_system,omitempty"`
	Hardware            *Hardware        `json:"hardware,omitempty" mapstructure:"hardware" yaml:"hardware,omitempty"`
	PythonVersion       string           `json:"python_version,omitempty" mapstructure:"python_version" yaml:"python_version,omitempty"`
	CudaVersion         string           `json:"cuda_version,omitempty" mapstructure:"cuda_version" yaml:"cuda_version,omitempty"`
	Platform            string           `json:"platform,omitempty" mapstructure:"platform" yaml:"platform,omitempty"`
	LimitLatestVersions *int             `json:"limit_latest_versions,omitempty" mapstructure:"limit_latest_versions" yaml:"limit_latest_versions,omitempty"`

	// RecommendationType overrides the configured default for advises run in
	// this environment. It is a client-side setting and never serialized to the API.
	RecommendationType string `json:"-" mapstructure:"recommendation_type" yaml:"recommendation_type,omitempty"`
}

// Payload returns a copy of env suitable for submission.
func (env *RuntimeEnvironment) Payload() *RuntimeEnvironment {
	if env == nil {
		return nil
	}
	out := *env
	out.RecommendationType = ""
	return &out
}

// AdviseInput is the body of an advise submission.
type AdviseInput struct {
	ApplicationStack   PythonStack         `json:"application_stack"`
	RuntimeEnvironment *RuntimeEnvironment `json:"runtime_environment,omitempty"`
}

// ProvenanceInput is the body of a provenance check submission.
type ProvenanceInput struct {
	ApplicationStack PythonStack `json:"application_stack"`
}
