package feed

import (
	"fmt"
	"strings"
)

// Action is a feed notification verb.
type Action int

const (
	ActionAdd Action = iota
	ActionChange
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionChange:
		return "change"
	default:
		return "delete"
	}
}

// ParseAction maps a sanitized actie value to an Action. Values outside the
// accepted set are rejected before they reach the pipeline; within the
// pipeline anything that is not add or change is handled as a delete.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "add":
		return ActionAdd, true
	case "change":
		return ActionChange, true
	case "delete":
		return ActionDelete, true
	default:
		return ActionDelete, false
	}
}

// Fields is the canonical field set consumed by the sync pipeline, regardless
// of whether the request arrived as form data or XML. Pointer fields are nil
// when the parameter was absent from the request, which drives the partial
// update semantics of a change notification.
type Fields struct {
	Action       Action
	ExternalID   string
	Title        *string
	Notes        *string
	Price        *int
	Sold         *bool
	LicensePlate *string
	ImageURLs    []string
}

// fieldSpec describes one accepted request parameter: how to validate the raw
// value and how to fold the sanitized value into Fields.
type fieldSpec struct {
	name     string
	required bool
	validate func(raw string) error
	apply    func(f *Fields, raw string)
}

var fieldSpecs = []fieldSpec{
	{
		name:     "actie",
		required: true,
		validate: func(raw string) error {
			if _, ok := ParseAction(strings.ToLower(raw)); !ok {
				return fmt.Errorf("invalid value for actie: %q", raw)
			}
			return nil
		},
		apply: func(f *Fields, raw string) {
			f.Action, _ = ParseAction(strings.ToLower(raw))
		},
	},
	{
		name:     "voertuignr_hexon",
		required: true,
		validate: func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				return fmt.Errorf("voertuignr_hexon must not be empty")
			}
			return nil
		},
		apply: func(f *Fields, raw string) {
			f.ExternalID = strings.TrimSpace(raw)
		},
	},
	{
		name: "kenteken",
		apply: func(f *Fields, raw string) {
			v := strings.TrimSpace(raw)
			f.LicensePlate = &v
		},
	},
	{
		name: "verkoopprijs_particulier",
		apply: func(f *Fields, raw string) {
			v := SanitizeInt(raw)
			f.Price = &v
		},
	},
	{
		name: "opmerkingen",
		apply: func(f *Fields, raw string) {
			v := SanitizeText(raw)
			f.Notes = &v
		},
	},
	{
		name: "titel",
		apply: func(f *Fields, raw string) {
			v := SanitizeText(raw)
			f.Title = &v
		},
	},
	{
		name: "verkocht",
		apply: func(f *Fields, raw string) {
			v := SanitizeBool(raw)
			f.Sold = &v
		},
	},
	{
		name: "afbeeldingen",
		apply: func(f *Fields, raw string) {
			f.ImageURLs = SanitizeURLList(raw)
		},
	},
}

// ParseFields validates and sanitizes a flat parameter map into Fields.
func ParseFields(params map[string]string) (Fields, error) {
	var f Fields
	for _, spec := range fieldSpecs {
		raw, ok := params[spec.name]
		if !ok {
			if spec.required {
				return Fields{}, fmt.Errorf("missing required parameter: %s", spec.name)
			}
			continue
		}
		if spec.validate != nil {
			if err := spec.validate(raw); err != nil {
				return Fields{}, err
			}
		}
		spec.apply(&f, raw)
	}
	return f, nil
}
