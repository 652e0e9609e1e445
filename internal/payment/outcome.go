package payment

// Stage names a step of the payment pipeline.
type Stage string

const (
	StageValidateInput   Stage = "validate_input"
	StageVendorExists    Stage = "vendor_exists"
	StageSecureHandshake Stage = "secure_handshake"
	StageUserConsent     Stage = "user_consent"
	StageSucceeded       Stage = "succeeded"
)

// Outcome is the result of a pipeline stage or of a whole pipeline run.
// A successful outcome never carries an error message.
type Outcome struct {
	Success      bool
	ErrorMessage string
	// Stage is set by the pipeline to the stage that produced a failure.
	Stage Stage
}

// Ok returns a successful outcome.
func Ok() Outcome {
	return Outcome{Success: true}
}

// Fail returns a failed outcome carrying message.
func Fail(message string) Outcome {
	return Outcome{ErrorMessage: message}
}
