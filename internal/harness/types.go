package harness

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case matched its expectation.
	Pass bool `json:"pass"`

	// Patch is the function under test.
	Patch string `json:"patch"`

	// Listing is the printed IR of the patch function.
	Listing string `json:"listing"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors contains every failure message across all cases.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// CaseResult is what one call produced.
type CaseResult struct {
	Name  string     `json:"name"`
	Pass  bool       `json:"pass"`
	Lanes [2]float64 `json:"lanes"`
	Form  string     `json:"form,omitempty"`

	// ErrorCode is the runtime error code if the call failed.
	ErrorCode string `json:"error_code,omitempty"`

	Steps  int      `json:"steps"`
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(patch string) *Result {
	return &Result{
		Pass:   true,
		Patch:  patch,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records a finished case, failing the result if the case failed.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, err := range c.Errors {
		r.AddError(c.Name + ": " + err)
	}
}
