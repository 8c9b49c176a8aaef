package translit

// VerificationResult is the reportable form of an Outcome for one test case.
type VerificationResult struct {
	TestID       string
	ObservedText string
	Matched      bool
	Errored      bool
	ErrorMessage string
}

func NewVerificationResult(testID string, o Outcome) VerificationResult {
	r := VerificationResult{
		TestID:       testID,
		ObservedText: o.Observed,
		Matched:      o.Matched,
	}
	if o.Err != nil {
		r.Errored = true
		r.ErrorMessage = o.Err.Error()
	}
	return r
}
