package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CustomerForm holds the raw customer form text fields as submitted.
type CustomerForm struct {
	Name  string
	Email string
}

// Echo returns the raw values keyed by form field name, for redisplaying the form.
func (f CustomerForm) Echo() map[string]string {
	return map[string]string{
		"name":  f.Name,
		"email": f.Email,
	}
}

// CustomerInput is a validated, trimmed customer form.
type CustomerInput struct {
	Name  string
	Email string
}

// ValidateCustomerForm validates the customer text fields. The image field is
// validated separately by the upload package.
func ValidateCustomerForm(f CustomerForm) (CustomerInput, FieldErrors) {
	errs := FieldErrors{}
	in := CustomerInput{
		Name:  strings.TrimSpace(f.Name),
		Email: strings.TrimSpace(f.Email),
	}

	switch n := utf8.RuneCountInString(in.Name); {
	case n == 0:
		errs.Add("name", "Please enter a customer name.")
	case n < 3:
		errs.Add("name", "Name must be at least 3 characters.")
	case n > 255:
		errs.Add("name", "Name must be at most 255 characters.")
	}

	if in.Email == "" {
		errs.Add("email", "Please enter an email address.")
	} else {
		if err := validate.Var(in.Email, "email"); err != nil {
			errs.Add("email", "Please enter a valid email address.")
		}
		if len(in.Email) > 255 {
			errs.Add("email", "Email must be at most 255 characters.")
		}
	}

	return in, errs
}
