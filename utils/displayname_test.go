package utils

import (
	"testing"

	"github.com/nestay/nestay_backend/models"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user models.User
		want string
	}{
		{"full name wins over everything",
			models.User{FullName: "Amina Khalil", FirstName: "A", LastName: "K", Username: "amina", Email: "amina@example.com"},
			"Amina Khalil"},
		{"first and last name joined",
			models.User{FirstName: "Amina", LastName: "Khalil", Username: "amina", Email: "amina@example.com"},
			"Amina Khalil"},
		{"first name alone",
			models.User{FirstName: "Amina", Email: "amina@example.com"},
			"Amina"},
		{"last name alone",
			models.User{LastName: "Khalil", Email: "amina@example.com"},
			"Khalil"},
		{"username before email",
			models.User{Username: "amina_k", Email: "amina@example.com"},
			"amina_k"},
		{"email local part as fallback",
			models.User{Email: "amina@example.com"},
			"amina"},
		{"whitespace-only fields are skipped",
			models.User{FullName: "   ", Username: "  ", Email: "amina@example.com"},
			"amina"},
		{"nothing at all",
			models.User{},
			"Guest"},
		{"malformed email falls through",
			models.User{Email: "@example.com"},
			"Guest"},
	}

	for _, tc := range cases {
		if got := DisplayName(tc.user); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
