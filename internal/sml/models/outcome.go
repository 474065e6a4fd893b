package models

// Detail is one labelled fact shown alongside an outcome message.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Cause is the technical reason behind a failed outcome.
type Cause struct {
	Class   string `json:"class"`
	Message string `json:"message"`
}

// Outcome is the tagged result of one workflow invocation: either a success
// with display details, or a failure with a cause. Exactly one of Details
// or Cause is populated.
type Outcome struct {
	Success bool     `json:"success"`
	Action  string   `json:"action"`
	Message string   `json:"message"`
	Details []Detail `json:"details,omitempty"`
	// Warnings are advisory codes on a success, e.g. "not_yet_valid".
	Warnings []string `json:"warnings,omitempty"`
	Cause    *Cause   `json:"cause,omitempty"`
}

// Succeeded builds a success outcome.
func Succeeded(action, message string, details ...Detail) *Outcome {
	return &Outcome{Success: true, Action: action, Message: message, Details: details}
}

// Failed builds a failure outcome.
func Failed(action, message string, cause Cause) *Outcome {
	return &Outcome{Success: false, Action: action, Message: message, Cause: &cause}
}

// SMPIdentity is the local SMP as known to the SML.
type SMPIdentity struct {
	SMPID           string `json:"smp_id"`
	PhysicalAddress string `json:"physical_address"`
	LogicalAddress  string `json:"logical_address"`
}
