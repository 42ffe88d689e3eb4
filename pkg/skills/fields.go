package skills

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/webpilot-dev/webpilot/pkg/planning"
)

// field is one discovered form control with the handle needed to act on it.
type field struct {
	spec    planning.FieldSpec
	locator playwright.Locator
	tag     string // input, textarea, select
	kind    string // input type attribute, lowercased
}

// skippedInputTypes are controls the fill skills never write into.
var skippedInputTypes = map[string]bool{
	"hidden": true, "submit": true, "button": true,
	"image": true, "reset": true, "file": true,
}

// discoverFields finds the fillable controls inside the active context and
// derives a semantic label for each: associated <label>, else name, else
// placeholder.
func (s *Skills) discoverFields(contextSelector string) ([]field, error) {
	container := s.session.Page.Locator(contextSelector)
	controls, err := container.Locator("input, textarea, select").All()
	if err != nil {
		return nil, fmt.Errorf("field discovery in %q failed: %w", contextSelector, err)
	}

	var fields []field
	for i, control := range controls {
		visible, err := control.IsVisible()
		if err != nil || !visible {
			continue
		}

		tag := controlTag(control)
		kind := strings.ToLower(attr(control, "type"))
		if tag == "input" && skippedInputTypes[kind] {
			continue
		}

		spec := planning.FieldSpec{
			Name:        attr(control, "name"),
			Placeholder: attr(control, "placeholder"),
			Type:        kind,
		}
		spec.Label = s.associatedLabel(control)
		spec.Key = fieldKey(spec, i)

		fields = append(fields, field{spec: spec, locator: control, tag: tag, kind: kind})
	}
	return fields, nil
}

// associatedLabel reads the text of the <label> bound to the control via its
// id, if any.
func (s *Skills) associatedLabel(control playwright.Locator) string {
	id := attr(control, "id")
	if id == "" {
		return ""
	}
	label := s.session.Page.Locator(fmt.Sprintf(`label[for=%q]`, id))
	count, err := label.Count()
	if err != nil || count == 0 {
		return ""
	}
	text, err := label.First().TextContent()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// fieldKey derives the stable key a mapping or validation scenario refers to
// a field by.
func fieldKey(spec planning.FieldSpec, index int) string {
	switch {
	case spec.Name != "":
		return spec.Name
	case spec.Label != "":
		return strings.ToLower(strings.ReplaceAll(spec.Label, " ", "_"))
	case spec.Placeholder != "":
		return strings.ToLower(strings.ReplaceAll(spec.Placeholder, " ", "_"))
	}
	return fmt.Sprintf("field_%d", index)
}

// specs projects discovered fields to the planner-facing shape.
func specs(fields []field) []planning.FieldSpec {
	out := make([]planning.FieldSpec, len(fields))
	for i, f := range fields {
		out[i] = f.spec
	}
	return out
}

func controlTag(control playwright.Locator) string {
	raw, err := control.Evaluate("el => el.tagName.toLowerCase()", nil)
	if err != nil {
		return "input"
	}
	tag, ok := raw.(string)
	if !ok {
		return "input"
	}
	return tag
}

func attr(control playwright.Locator, name string) string {
	value, err := control.GetAttribute(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
