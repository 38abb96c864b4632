package customer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	accountNumberRe = regexp.MustCompile(`^\d{9,18}$`)
	emailRe         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe         = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// Field error messages. The UI and tests compare against these verbatim.
const (
	MsgNameRequired          = "Customer name is required"
	MsgNameTooShort          = "Customer name must be at least 2 characters"
	MsgAccountNumberRequired = "Bank account number is required"
	MsgAccountNumberInvalid  = "Bank account number must be 9-18 digits"
	MsgEmailRequired         = "Email is required"
	MsgEmailInvalid          = "Please enter a valid email address"
	MsgAddressRequired       = "Address is required"
	MsgAddressTooShort       = "Address must be at least 10 characters"
	MsgPhoneRequired         = "Mobile number is required"
	MsgPhoneInvalid          = "Please enter a valid 10-digit mobile number"
)

const (
	minNameLen    = 2
	minAddressLen = 10
)

// ValidationErrors maps a field to its message. An empty set means the record is valid.
type ValidationErrors map[Field]string

func (v ValidationErrors) Valid() bool { return len(v) == 0 }

// Clear drops the error of a single field, leaving the others in place.
func (v ValidationErrors) Clear(f Field) {
	delete(v, f)
}

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "no validation errors"
	}
	keys := make([]string, 0, len(v))
	for f := range v {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v[Field(k)]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks every field of r. It never mutates r.
func Validate(r Record) ValidationErrors {
	r = r.Trimmed()
	errs := ValidationErrors{}

	switch {
	case r.Name == "":
		errs[FieldName] = MsgNameRequired
	case utf8.RuneCountInString(r.Name) < minNameLen:
		errs[FieldName] = MsgNameTooShort
	}

	switch {
	case r.AccountNumber == "":
		errs[FieldAccountNumber] = MsgAccountNumberRequired
	case !accountNumberRe.MatchString(r.AccountNumber):
		errs[FieldAccountNumber] = MsgAccountNumberInvalid
	}

	switch {
	case r.Email == "":
		errs[FieldEmail] = MsgEmailRequired
	case !emailRe.MatchString(r.Email):
		errs[FieldEmail] = MsgEmailInvalid
	}

	switch {
	case r.Address == "":
		errs[FieldAddress] = MsgAddressRequired
	case utf8.RuneCountInString(r.Address) < minAddressLen:
		errs[FieldAddress] = MsgAddressTooShort
	}

	switch {
	case r.Phone == "":
		errs[FieldPhone] = MsgPhoneRequired
	case !phoneRe.MatchString(r.Phone):
		errs[FieldPhone] = MsgPhoneInvalid
	}

	return errs
}
