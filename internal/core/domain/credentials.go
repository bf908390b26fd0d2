package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Reserved credential field names.
const (
	FieldLogin    = "login"
	FieldPassword = "password"
)

// CustomField is a source-specific named credential beyond login and password.
// This is the wire format accepted from callers: [{"name": "...", "value": "..."}].
type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CredentialBundle holds the credentials for one session.
//
// A bundle is immutable once built: values can only be read through
// accessors, and its string forms never reveal them, so a bundle can be
// handed to log statements by mistake without leaking secrets.
type CredentialBundle struct {
	fields map[string]string
}

// NewCredentialBundle builds a bundle from login, password and custom fields.
// A custom field without a name, or one redefining login or password, is a
// configuration error.
func NewCredentialBundle(login, password string, custom []CustomField) (CredentialBundle, error) {
	fields := make(map[string]string, len(custom)+2)
	fields[FieldLogin] = login
	fields[FieldPassword] = password

	for i, f := range custom {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return CredentialBundle{}, NewConfigError("", "custom field #%d has no name", i+1)
		}
		if name == FieldLogin || name == FieldPassword {
			return CredentialBundle{}, NewConfigError(name, "reserved field cannot be set as a custom field")
		}
		fields[name] = f.Value
	}

	return CredentialBundle{fields: fields}, nil
}

// Login returns the login.
func (c CredentialBundle) Login() string {
	return c.fields[FieldLogin]
}

// Password returns the password.
func (c CredentialBundle) Password() string {
	return c.fields[FieldPassword]
}

// Field returns the value of a named field and whether it is set.
func (c CredentialBundle) Field(name string) (string, bool) {
	v, ok := c.fields[name]
	return v, ok
}

// Names returns the sorted field names.
func (c CredentialBundle) Names() []string {
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of all fields.
func (c CredentialBundle) Map() map[string]string {
	out := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// String implements fmt.Stringer without revealing values.
func (c CredentialBundle) String() string {
	return fmt.Sprintf("CredentialBundle{fields: %s}", strings.Join(c.Names(), ","))
}

// GoString implements fmt.GoStringer without revealing values.
func (c CredentialBundle) GoString() string {
	return c.String()
}
