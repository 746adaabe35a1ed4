package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/anikchand461/envpod/internal/state"
	envpoderrors "github.com/anikchand461/envpod/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	targetNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	envNamePattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	constraintPattern = regexp.MustCompile(`^[\d\s.,<>=~^*xX|-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("version_constraint", func(fl validator.FieldLevel) bool {
			raw := strings.TrimSpace(fl.Field().String())
			if raw == "" || !constraintPattern.MatchString(raw) {
				return false
			}
			_, err := state.RuntimeSpec{Kind: "python", Constraint: raw}.Constraints()
			return err == nil
		})

		_ = v.RegisterValidation("target_name", func(fl validator.FieldLevel) bool {
			return targetNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("env_name", func(fl validator.FieldLevel) bool {
			return envNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("dep_spec", func(fl validator.FieldLevel) bool {
			_, err := state.ParseDependency(fl.Field().String())
			return err == nil
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the
// configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return envpoderrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]string, len(cfg.Dependencies.Packages))
	for _, raw := range cfg.Dependencies.Packages {
		dep, err := state.ParseDependency(raw)
		if err != nil {
			return envpoderrors.NewValidationError("dependencies.packages", err.Error(), err)
		}
		if prior, dup := seen[dep.Name]; dup {
			return envpoderrors.NewValidationError("dependencies.packages",
				fmt.Sprintf("duplicate dependency %q (declared as %q and %q)", dep.Name, prior, raw), nil)
		}
		seen[dep.Name] = raw
	}

	return nil
}

func convertValidationError(err error) error {
	var invalid *validator.InvalidValidationError
	if ok := isInvalidValidation(err, &invalid); ok {
		return envpoderrors.NewValidationError("config", invalid.Error(), err)
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		field := strings.ToLower(first.Namespace())
		field = strings.TrimPrefix(field, "config.")
		return envpoderrors.NewValidationError(field, fmt.Sprintf("failed %q rule", first.Tag()), err)
	}

	return envpoderrors.NewValidationError("config", err.Error(), err)
}

func isInvalidValidation(err error, target **validator.InvalidValidationError) bool {
	invalid, ok := err.(*validator.InvalidValidationError)
	if !ok {
		return false
	}
	*target = invalid
	return true
}
