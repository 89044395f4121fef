package validator

import "math"

// Validator collects field errors keyed by field name.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the errors map doesn't contain any entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error message to the map (so long as no entry already exists for
// the given key).
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error message to the map only if a validation check is not 'ok'.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// NonEmptyString reports whether value is a string with at least one byte.
func NonEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && s != ""
}

// NonZeroNumber reports whether value is a finite JSON number different from zero.
func NonZeroNumber(value any) bool {
	f, ok := value.(float64)
	return ok && f != 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}
