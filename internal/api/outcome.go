package api

// Outcome buckets an HTTP status into the three result classes the group
// operations report.
type Outcome int

const (
	// OutcomeFatal is any status outside the success and no-op sets,
	// including the zero status of a request that never produced a response.
	OutcomeFatal Outcome = iota
	// OutcomeSuccess covers 200 and 201.
	OutcomeSuccess
	// OutcomeNoOp covers 304, 400, and 404: the platform answered but no
	// effective change occurred.
	OutcomeNoOp
)

// Classify maps a status code to its outcome. Every integer maps to
// exactly one bucket.
func Classify(status int) Outcome {
	switch status {
	case 200, 201:
		return OutcomeSuccess
	case 304, 400, 404:
		return OutcomeNoOp
	default:
		return OutcomeFatal
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoOp:
		return "no-op"
	default:
		return "fatal"
	}
}
