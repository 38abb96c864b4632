package customer

import "strings"

// Field tags a detokenizable customer attribute.
type Field string

const (
	FieldName          Field = "name"
	FieldAccountNumber Field = "accountNumber"
	FieldEmail         Field = "email"
	FieldAddress       Field = "address"
	FieldPhone         Field = "phone"
)

// Fields lists every field in form order.
var Fields = []Field{FieldName, FieldAccountNumber, FieldEmail, FieldAddress, FieldPhone}

// Label returns the human readable name shown next to inputs.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Customer Name"
	case FieldAccountNumber:
		return "Bank Account Number"
	case FieldEmail:
		return "Email Address"
	case FieldAddress:
		return "Address"
	case FieldPhone:
		return "Mobile Number"
	default:
		return string(f)
	}
}

// Placeholder is the hint shown in an empty input for f.
func (f Field) Placeholder() string {
	switch f {
	case FieldName:
		return "Enter customer name"
	case FieldAccountNumber:
		return "Enter bank account number"
	case FieldEmail:
		return "Enter email address"
	case FieldAddress:
		return "Enter complete address"
	case FieldPhone:
		return "Enter 10-digit mobile number"
	default:
		return ""
	}
}

func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Record is a customer entry as entered by the user or returned by the vault.
type Record struct {
	Name          string
	AccountNumber string
	Email         string
	Address       string
	Phone         string
}

func (r Record) Get(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldAccountNumber:
		return r.AccountNumber
	case FieldEmail:
		return r.Email
	case FieldAddress:
		return r.Address
	case FieldPhone:
		return r.Phone
	}
	return ""
}

func (r *Record) Set(f Field, v string) {
	switch f {
	case FieldName:
		r.Name = v
	case FieldAccountNumber:
		r.AccountNumber = v
	case FieldEmail:
		r.Email = v
	case FieldAddress:
		r.Address = v
	case FieldPhone:
		r.Phone = v
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r Record) Trimmed() Record {
	var out Record
	for _, f := range Fields {
		out.Set(f, strings.TrimSpace(r.Get(f)))
	}
	return out
}

// Created is the vault's answer to a create call.
type Created struct {
	ID     string
	Record Record
}

// Criterion is a single field search.
type Criterion struct {
	Field Field
	Query string
}

// Empty reports whether the query has no non-whitespace content.
func (c Criterion) Empty() bool {
	return strings.TrimSpace(c.Query) == ""
}
