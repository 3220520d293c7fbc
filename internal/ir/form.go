package ir

import "fmt"

// Form is the unit tag carried alongside a numeric value.
// It is stored as an i8 in the form field of a num cell.
type Form uint8

const (
	FormNone Form = iota
	FormAmplitude
	FormBeats
	FormControl
	FormDb
	FormFrequency
	FormNote
	FormSamples
	FormSeconds
)

var formNames = map[Form]string{
	FormNone:      "none",
	FormAmplitude: "amplitude",
	FormBeats:     "beats",
	FormControl:   "control",
	FormDb:        "db",
	FormFrequency: "frequency",
	FormNote:      "note",
	FormSamples:   "samples",
	FormSeconds:   "seconds",
}

// String returns the lowercase name of the form.
func (f Form) String() string {
	if name, ok := formNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Form(%d)", f)
}

// Forms returns every known form in tag order.
func Forms() []Form {
	return []Form{
		FormNone, FormAmplitude, FormBeats, FormControl, FormDb,
		FormFrequency, FormNote, FormSamples, FormSeconds,
	}
}

// ParseForm maps a form name to its tag. The empty string means FormNone.
func ParseForm(s string) (Form, error) {
	if s == "" {
		return FormNone, nil
	}
	for f, name := range formNames {
		if name == s {
			return f, nil
		}
	}
	return FormNone, fmt.Errorf("unknown form %q", s)
}
