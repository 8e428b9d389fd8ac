// utils/displayname.go
package utils

import (
	"strings"

	"github.com/nestay/nestay_backend/models"
)

// DisplayName resolves the name shown for a user from its optional profile
// fields. Precedence is an explicit ordered list, first non-empty wins:
// fullName, firstName+lastName, username, the local part of the email.
func DisplayName(u models.User) string {
	candidates := []string{
		strings.TrimSpace(u.FullName),
		strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName)),
		strings.TrimSpace(u.Username),
		emailLocalPart(u.Email),
	}

	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return "Guest"
}

func emailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return ""
}
