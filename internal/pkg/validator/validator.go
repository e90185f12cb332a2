package validator

// Validator validates structs using declarative rules.
type Validator interface {
	// Validate returns nil when data passes, or an error describing the
	// failing fields.
	Validate(data any) error
}
