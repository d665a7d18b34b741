package response

import "fmt"

// AckOutcome is the subsystem's acknowledgment of a response submission.
type AckOutcome int

const (
	// OutcomeSuccess means the kernel accepted the response.
	OutcomeSuccess AckOutcome = iota
	// OutcomeWrongEventType means the response shape is not valid for the
	// event's type.
	OutcomeWrongEventType
	// OutcomeInvalidArgument means the payload was malformed.
	OutcomeInvalidArgument
	// OutcomeDuplicateResponse means the event was already answered.
	OutcomeDuplicateResponse
	// OutcomeNotFound means the kernel no longer knows the event, usually
	// because its deadline passed and a default action was applied.
	OutcomeNotFound
	// OutcomeInternalError means communication with the subsystem failed.
	OutcomeInternalError
	// OutcomeUnknown covers outcome codes this build does not recognize.
	OutcomeUnknown
)

// Class groups outcomes by how they must be reported.
type Class int

const (
	// ClassOK is a delivered response.
	ClassOK Class = iota
	// ClassFailure is a response the kernel did not take. Reported, never
	// retried.
	ClassFailure
	// ClassLogicFault is an outcome that correct usage can never produce.
	ClassLogicFault
)

// String returns the string representation of the outcome.
func (o AckOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeWrongEventType:
		return "wrong_event_type"
	case OutcomeInvalidArgument:
		return "invalid_argument"
	case OutcomeDuplicateResponse:
		return "duplicate_response"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Description returns a human-readable explanation of the outcome.
func (o AckOutcome) Description() string {
	switch o {
	case OutcomeSuccess:
		return "successfully responded to event"
	case OutcomeWrongEventType:
		return "response shape not valid for this event type"
	case OutcomeInvalidArgument:
		return "invalid response arguments"
	case OutcomeDuplicateResponse:
		return "event was already responded to"
	case OutcomeNotFound:
		return "event not found, kernel deadline likely passed"
	case OutcomeInternalError:
		return "error communicating with the subsystem"
	default:
		return "unrecognized response outcome"
	}
}

// Class returns how the outcome must be handled.
func (o AckOutcome) Class() Class {
	switch o {
	case OutcomeSuccess:
		return ClassOK
	case OutcomeDuplicateResponse, OutcomeWrongEventType:
		return ClassLogicFault
	default:
		return ClassFailure
	}
}

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassOK:
		return "ok"
	case ClassFailure:
		return "failure"
	case ClassLogicFault:
		return "logic_fault"
	default:
		return "unknown"
	}
}

// Platform respond-result codes. The numbering is fixed by the kernel
// subsystem and must not change.
const (
	CodeSuccess           uint32 = 0
	CodeInvalidArgument   uint32 = 1
	CodeInternal          uint32 = 2
	CodeNotFound          uint32 = 3
	CodeDuplicateResponse uint32 = 4
	CodeEventType         uint32 = 5
)

// OutcomeFromCode maps a platform respond-result code to an AckOutcome.
func OutcomeFromCode(code uint32) AckOutcome {
	switch code {
	case CodeSuccess:
		return OutcomeSuccess
	case CodeInvalidArgument:
		return OutcomeInvalidArgument
	case CodeInternal:
		return OutcomeInternalError
	case CodeNotFound:
		return OutcomeNotFound
	case CodeDuplicateResponse:
		return OutcomeDuplicateResponse
	case CodeEventType:
		return OutcomeWrongEventType
	default:
		return OutcomeUnknown
	}
}

// ParseOutcome parses the string form produced by AckOutcome.String.
func ParseOutcome(s string) (AckOutcome, error) {
	for o := OutcomeSuccess; o <= OutcomeUnknown; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return OutcomeUnknown, fmt.Errorf("invalid outcome: %q", s)
}
