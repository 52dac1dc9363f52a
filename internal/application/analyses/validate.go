package analyses

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/virouzrx/petfood-verifai/internal/domain/analyses"
)

var validate = validator.New()

// json-facing names for struct fields reported by the validator
var fieldNames = map[string]string{
	"UserID":  "userId",
	"Species": "species",
	"Breed":   "breed",
	"Age":     "age",
}

// validateCommand checks the request shape before any external call. Mode
// rules: manual requires name + ingredients and forbids a URL; url mode
// requires an absolute http(s) URL and leaves name/ingredients optional.
func validateCommand(cmd *CreateAnalysisCommand) (analyses.PetProfile, *analyses.ValidationError) {
	var fields []string

	if err := validate.Struct(cmd); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				if name, ok := fieldNames[fe.Field()]; ok {
					fields = append(fields, name)
				} else {
					fields = append(fields, fe.Field())
				}
			}
		}
	}

	species := analyses.Species(strings.ToLower(strings.TrimSpace(cmd.Species)))
	if cmd.Species != "" && species != analyses.SpeciesCat && species != analyses.SpeciesDog {
		fields = append(fields, "species")
	}

	if cmd.IsManual {
		if strings.TrimSpace(cmd.ProductName) == "" {
			fields = append(fields, "productName")
		}
		if strings.TrimSpace(cmd.IngredientsText) == "" {
			fields = append(fields, "ingredientsText")
		}
		// supplying a URL alongside manual mode is an invalid combination,
		// not something to silently ignore
		if strings.TrimSpace(cmd.ProductURL) != "" {
			fields = append(fields, "productUrl")
		}
	} else {
		if err := validateProductURL(cmd.ProductURL); err != "" {
			fields = append(fields, err)
		}
	}

	if len(fields) > 0 {
		return analyses.PetProfile{}, &analyses.ValidationError{Fields: dedupe(fields)}
	}

	return analyses.PetProfile{
		Species:        species,
		Breed:          sanitize(cmd.Breed),
		Age:            cmd.Age,
		AdditionalInfo: sanitize(cmd.AdditionalInfo),
	}, nil
}

// validateProductURL returns the offending field name or "".
func validateProductURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "productUrl"
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "productUrl"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "productUrl"
	}
	if isBlockedHost(u.Hostname()) {
		return "productUrl"
	}
	return ""
}

// isBlockedHost rejects localhost and private ranges (SSRF protection)
func isBlockedHost(host string) bool {
	host = strings.ToLower(host)
	blocked := []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"}
	for _, b := range blocked {
		if host == b {
			return true
		}
	}
	return strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "192.168.") ||
		strings.HasPrefix(host, "172.16.") ||
		strings.HasPrefix(host, "172.31.")
}

// sanitize removes null bytes and control characters from opaque text inputs
func sanitize(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
