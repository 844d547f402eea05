// Package mutation implements the invoice and customer write operations. Each
// operation validates its form, makes at most one persistence attempt,
// invalidates affected views, and reports everything as a Result value.
package mutation

import "github.com/ledgerline/dashboard/internal/api/validation"

// Outcome classifies how a mutation ended. It is not serialized; the HTTP
// layer uses it to pick a status code.
type Outcome int

const (
	// Committed means the write succeeded.
	Committed Outcome = iota + 1
	// Rejected means the input failed validation or a storage constraint the
	// user can correct.
	Rejected
	// NotFound means the target record does not exist.
	NotFound
	// Failed means the database write failed.
	Failed
	// StoreFailed means the uploaded image could not be stored.
	StoreFailed
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Rejected:
		return "rejected"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	case StoreFailed:
		return "store_failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a mutation as seen by the form that submitted it.
// On success Errors is empty and FormData is nil; otherwise FormData echoes
// the submitted text fields so the form can be redisplayed.
type Result struct {
	Errors   validation.FieldErrors `json:"errors"`
	Message  *string                `json:"message"`
	FormData map[string]string      `json:"formData"`
	Success  bool                   `json:"success"`
	Outcome  Outcome                `json:"-"`
}

func committed(msg string) Result {
	return Result{
		Errors:  validation.FieldErrors{},
		Message: &msg,
		Success: true,
		Outcome: Committed,
	}
}

func unsuccessful(outcome Outcome, msg string, errs validation.FieldErrors, formData map[string]string) Result {
	if errs == nil {
		errs = validation.FieldErrors{}
	}
	return Result{
		Errors:   errs,
		Message:  &msg,
		FormData: formData,
		Outcome:  outcome,
	}
}
