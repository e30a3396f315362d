package validate

import (
	"errors"
	"fmt"
	"net/mail"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 30
	passwordMinLen = 8
)

// Username must be 3-30 characters of latin letters, digits and underscore
func Username(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return fmt.Errorf("username must be between %d and %d characters", usernameMinLen, usernameMaxLen)
	}

	for i := 0; i < len(username); i++ {
		c := username[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return errors.New("username may contain only letters, digits and underscore")
		}
	}

	return nil
}

func Email(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("email is not valid")
	}

	// mail.ParseAddress accepts the 'Name <addr>' form, plain address expected here
	if addr.Address != email {
		return errors.New("email is not valid")
	}

	return nil
}

// Password must be long enough and mix at least letters and digits
func Password(password string) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters", passwordMinLen)
	}

	var hasLetter, hasDigit bool
	for i := 0; i < len(password); i++ {
		c := password[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return errors.New("password must contain at least one letter and one digit")
	}

	return nil
}
