package email

import (
	"fmt"

	"github.com/emersion/go-message/mail"
)

// bareAddress returns addr-spec of s, which may carry a display name.
func bareAddress(s string) (string, error) {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return "", fmt.Errorf("parse address %q: %w", s, err)
	}
	return a.Address, nil
}
