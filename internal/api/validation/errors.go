package validation

// FieldErrors maps a form field name to its validation messages, in the order
// the checks ran. Fields are validated independently; one field failing never
// suppresses checks on another.
type FieldErrors map[string][]string

// Add appends a message to the field's list.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge appends every message of other into e.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		for _, m := range msgs {
			e.Add(field, m)
		}
	}
}

// Has reports whether the field has at least one message.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// HasErrors reports whether any field has a message.
func (e FieldErrors) HasErrors() bool {
	for _, msgs := range e {
		if len(msgs) > 0 {
			return true
		}
	}
	return false
}
