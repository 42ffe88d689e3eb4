// Package skills implements the composite behaviors a workflow plan can
// invoke: the happy-path form fill and the form-validation probe.
package skills

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/webpilot-dev/webpilot/pkg/planning"
)

// Generate produces a value for a field from its generator mapping. Unknown
// namespaces or methods fall back to generic text rather than failing: a
// slightly wrong value still exercises the form.
func Generate(gen planning.Generator) string {
	switch gen.Namespace + "." + gen.Method {
	case "person.firstName":
		return gofakeit.FirstName()
	case "person.lastName":
		return gofakeit.LastName()
	case "person.fullName":
		return gofakeit.Name()
	case "person.jobTitle":
		return gofakeit.JobTitle()
	case "internet.email":
		return gofakeit.Email()
	case "internet.userName":
		return gofakeit.Username()
	case "internet.password":
		return gofakeit.Password(true, true, true, true, false, 12)
	case "internet.url":
		return gofakeit.URL()
	case "phone.number":
		return gofakeit.Phone()
	case "company.name":
		return gofakeit.Company()
	case "location.city":
		return gofakeit.City()
	case "location.zipCode":
		return gofakeit.Zip()
	case "location.streetAddress":
		return gofakeit.Street()
	case "lorem.word":
		return gofakeit.Word()
	case "lorem.sentence":
		return gofakeit.Sentence(8)
	case "number.int":
		return fmt.Sprintf("%d", gofakeit.Number(intOption(gen, "min", 1), intOption(gen, "max", 100)))
	case "helpers.arrayElement":
		if v := arrayElement(gen); v != "" {
			return v
		}
	}
	return genericText()
}

// genericText is the fallback for unmapped fields and dispatch errors.
func genericText() string {
	return gofakeit.Word() + " " + gofakeit.Word()
}

// arrayElement picks one of the values carried in the generator options.
func arrayElement(gen planning.Generator) string {
	raw, ok := gen.Options["values"]
	if !ok {
		return ""
	}
	values, ok := raw.([]any)
	if !ok || len(values) == 0 {
		return ""
	}
	pick := values[gofakeit.Number(0, len(values)-1)]
	return fmt.Sprintf("%v", pick)
}

// intOption reads an integer option, tolerating the float64 JSON numbers
// decode to.
func intOption(gen planning.Generator, key string, fallback int) int {
	raw, ok := gen.Options[key]
	if !ok {
		return fallback
	}
	switch v := raw.(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
