package certificate

import "strings"

// Form fields the validator reports on.
const (
	FieldMigrationDate = "migration_date"
	FieldPublicKey     = "public_key"
)

// Code identifies a validation failure kind.
type Code string

const (
	CodeParseError          Code = "parse_error"
	CodeExpiredCertificate  Code = "expired_certificate"
	CodeDateInPast          Code = "date_in_past"
	CodeDateOutOfWindow     Code = "date_out_of_window"
	CodeEffectiveDateInPast Code = "effective_date_in_past"
	CodeMissingCertificate  Code = "missing_certificate"
	CodeInvalidDate         Code = "invalid_date"
	CodePEMArmor            Code = "pem_armor"
)

// FieldError is one validation failure attached to an input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// FieldErrors accumulates validation failures in the order they were found.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any error carries code.
func (e FieldErrors) Has(code Code) bool {
	for _, fe := range e {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// ForField returns the errors attached to field.
func (e FieldErrors) ForField(field string) FieldErrors {
	var out FieldErrors
	for _, fe := range e {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}

// Add appends one failure.
func (e *FieldErrors) Add(field string, code Code, msg string) {
	*e = append(*e, FieldError{Field: field, Code: code, Message: msg})
}
