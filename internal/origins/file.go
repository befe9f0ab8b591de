package origins

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("domain_suffix", validateDomainSuffix); err != nil {
		panic(fmt.Sprintf("failed to register domain_suffix validator: %v", err))
	}
}

// validateDomainSuffix accepts ".example.com"-style suffixes. The leading dot keeps
// "evilexample.com" from matching.
func validateDomainSuffix(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 2 || s[0] != '.' || strings.HasSuffix(s, ".") {
		return false
	}
	return !strings.ContainsAny(s, "/:* ")
}

// LoadFile reads a YAML allow-list:
//
//	exact:
//	  - https://mcpcentral.io
//	suffixes:
//	  - .mcpcentral.io
//
// An empty path returns DefaultPolicy.
func LoadFile(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read allowed origins file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML allow-list. Unknown keys are rejected.
func Parse(data []byte) (*Policy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	p := &Policy{}
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("decode allowed origins: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid allowed origin entry %q: failed %s", verrs[0].Value(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("validate allowed origins: %w", err)
	}
	if len(p.Exact) == 0 && len(p.Suffixes) == 0 {
		return nil, errors.New("allowed origins file lists no origins")
	}
	return p, nil
}
