package customer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Naming selects the JSON keys used for record fields on the wire.
type Naming string

const (
	// NamingCustomer matches the create form: customerName, customerEmail, ...
	NamingCustomer Naming = "customer"
	// NamingDetokenize matches the detokenize payloads: bankAccountNo, mobileNo, ...
	NamingDetokenize Naming = "detokenize"
)

var wireKeys = map[Naming]map[Field]string{
	NamingCustomer: {
		FieldName:          "customerName",
		FieldAccountNumber: "customerAccountNumber",
		FieldEmail:         "customerEmail",
		FieldAddress:       "customerAddress",
		FieldPhone:         "customerPhone",
	},
	NamingDetokenize: {
		FieldName:          "customerName",
		FieldAccountNumber: "bankAccountNo",
		FieldEmail:         "email",
		FieldAddress:       "address",
		FieldPhone:         "mobileNo",
	},
}

// ParseNaming accepts a naming profile name. Empty means NamingCustomer.
func ParseNaming(s string) (Naming, error) {
	switch Naming(strings.ToLower(strings.TrimSpace(s))) {
	case "", NamingCustomer:
		return NamingCustomer, nil
	case NamingDetokenize:
		return NamingDetokenize, nil
	}
	return "", fmt.Errorf("unknown field naming %q", s)
}

func (n Naming) keys() map[Field]string {
	if k, ok := wireKeys[n]; ok {
		return k
	}
	return wireKeys[NamingCustomer]
}

func (n Naming) other() Naming {
	if n == NamingDetokenize {
		return NamingCustomer
	}
	return NamingDetokenize
}

// Key returns the wire key of f under n.
func (n Naming) Key(f Field) string { return n.keys()[f] }

// Encode renders r as a flat JSON object body.
func (n Naming) Encode(r Record) map[string]string {
	out := make(map[string]string, len(Fields))
	for _, f := range Fields {
		out[n.Key(f)] = r.Get(f)
	}
	return out
}

// Decode reads a record from a JSON object. Keys of n win; keys of the other
// profile fill whatever is still missing. Numbers are accepted as strings.
// found is false when the object carries no known key at all.
func (n Naming) Decode(obj map[string]json.RawMessage) (rec Record, found bool) {
	for _, f := range Fields {
		for _, profile := range []Naming{n, n.other()} {
			raw, ok := obj[profile.Key(f)]
			if !ok {
				continue
			}
			v, err := Scalar(raw)
			if err != nil || v == "" {
				continue
			}
			rec.Set(f, v)
			found = true
			break
		}
	}
	return rec, found
}

// FieldForKey resolves a wire key under any profile.
func FieldForKey(key string) (Field, bool) {
	for _, n := range []Naming{NamingCustomer, NamingDetokenize} {
		for f, k := range n.keys() {
			if k == key {
				return f, true
			}
		}
	}
	return "", false
}

// Scalar turns a JSON string, number or null into a string.
func Scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return "", err
		}
		if i, err := num.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		return num.String(), nil
	}
	return "", fmt.Errorf("expected string or number, got %s", raw)
}
