package keyring

import (
	"errors"

	gokeyring "github.com/zalando/go-keyring"
)

// ErrNotFound is returned when no service token is stored.
var ErrNotFound = gokeyring.ErrNotFound

const (
	serviceName = "chatmark"
	userName    = "server-token"
)

// IsNotFound reports whether err indicates a missing keyring entry.
func IsNotFound(err error) bool {
	return errors.Is(err, gokeyring.ErrNotFound)
}

// Get retrieves the stored service token from the system keychain.
func Get() (string, error) {
	return gokeyring.Get(serviceName, userName)
}

// Set stores the service token in the system keychain.
func Set(token string) error {
	return gokeyring.Set(serviceName, userName, token)
}

// Delete removes the service token from the system keychain.
func Delete() error {
	return gokeyring.Delete(serviceName, userName)
}
