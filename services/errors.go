package services

// ErrorKind classifies service failures for the transport layer
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindForbidden
	KindProfileMissing
	KindInvalidState
	KindValidation
)

// InquiryError is returned by every inquiry operation that fails for a
// reason the caller can act on
type InquiryError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *InquiryError) Error() string {
	return e.Message
}

// Is matches errors of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found code
func (e *InquiryError) Is(target error) bool {
	t, ok := target.(*InquiryError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

var (
	ErrNotFound       = &InquiryError{Kind: KindNotFound}
	ErrForbidden      = &InquiryError{Kind: KindForbidden}
	ErrProfileMissing = &InquiryError{Kind: KindProfileMissing}
	ErrInvalidState   = &InquiryError{Kind: KindInvalidState}
	ErrValidation     = &InquiryError{Kind: KindValidation}
)

func errInquiryNotFound() error {
	return &InquiryError{Kind: KindNotFound, Code: "INQUIRY_NOT_FOUND", Message: "Inquiry not found"}
}

func errPropertyNotFound() error {
	return &InquiryError{Kind: KindNotFound, Code: "PROPERTY_NOT_FOUND", Message: "Property not found"}
}

func errAgentNotFound() error {
	return &InquiryError{Kind: KindNotFound, Code: "AGENT_NOT_FOUND", Message: "Agent not found"}
}

func errForbidden(msg string) error {
	return &InquiryError{Kind: KindForbidden, Code: "FORBIDDEN", Message: msg}
}

func errProfileMissing() error {
	return &InquiryError{Kind: KindProfileMissing, Code: "AGENT_PROFILE_NOT_FOUND", Message: "Agent profile not found"}
}

func errInquiryClosed() error {
	return &InquiryError{Kind: KindInvalidState, Code: "INQUIRY_CLOSED", Message: "Cannot send messages to closed inquiries"}
}

func errValidation(msg string) error {
	return &InquiryError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: msg}
}
