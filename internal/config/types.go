package config

// DefaultFileName is the config file envpod looks for at the project root.
const DefaultFileName = "envpod.yaml"

// Config represents the full envpod configuration document.
type Config struct {
	Name         string            `yaml:"name" validate:"required,min=1,max=100"`
	Runtime      Runtime           `yaml:"runtime" validate:"required"`
	Dependencies Dependencies      `yaml:"dependencies,omitempty"`
	Env          map[string]string `yaml:"env,omitempty" validate:"omitempty,dive,keys,env_name,endkeys"`
	EnvFile      string            `yaml:"env_file,omitempty"`
	Run          map[string]string `yaml:"run,omitempty" validate:"omitempty,dive,keys,target_name,endkeys,required"`
}

// Runtime declares the interpreter the environment is built on.
type Runtime struct {
	Kind    string `yaml:"kind,omitempty" validate:"omitempty,oneof=python"`
	Version string `yaml:"version" validate:"required,version_constraint"`
}

// Dependencies lists declared packages, inline and/or from a requirements
// file relative to the project root.
type Dependencies struct {
	Packages []string `yaml:"packages,omitempty" validate:"omitempty,dive,dep_spec"`
	File     string   `yaml:"file,omitempty"`
}
