package types

import "errors"

// ErrorKind classifies analysis failures so callers can route them without
// inspecting message text: validation errors render next to the file input,
// everything else in the error panel.
type ErrorKind int

const (
	// KindValidation: bad file type or size, detected before any network call.
	KindValidation ErrorKind = iota
	// KindExtraction: the document decoder failed or produced nothing readable.
	KindExtraction
	// KindBusinessRule: a between-step check failed (too little text, no skills).
	KindBusinessRule
	// KindUpstream: a collaborator API returned a non-success response.
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindExtraction:
		return "extraction"
	case KindBusinessRule:
		return "business_rule"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// AnalysisError is a failure with a user-facing message and a routing kind.
// Status is set for KindUpstream when the collaborator returned an HTTP status.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewError builds an AnalysisError with the given kind and message.
func NewError(kind ErrorKind, message string, err error) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: message, Err: err}
}

// KindOf reports the ErrorKind of err, or KindUpstream and false when err is
// not an AnalysisError.
func KindOf(err error) (ErrorKind, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return KindUpstream, false
}
