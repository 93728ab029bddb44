package main

import (
	"encoding/json"
	"errors"
	"regexp"
	"unicode"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{
		errors: make(map[string]string),
	}
}

func (v *validator) toError() error {
	if v == nil {
		return errors.New("")
	}
	data, err := json.Marshal(v.errors)
	if err != nil {
		return err
	}
	return errors.New(string(data))
}

func (v *validator) hasErrors() bool {
	return len(v.errors) != 0
}

func (v *validator) checkCond(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
	}
}

func (v *validator) checkEmail(email string) {
	v.checkCond(email != "", "email", "must be provided")
	v.checkCond(emailRegexp.MatchString(email), "email", "must be a valid email address")
}

// checkPassword enforces the strength policy: at least 12 characters,
// no whitespace, and at least one uppercase letter, lowercase letter,
// digit and non-alphanumeric character. The 72-byte cap is bcrypt's
// input limit.
func (v *validator) checkPassword(password string) {
	v.checkCond(password != "", "password", "must be provided")
	v.checkCond(len(password) >= 12, "password", "must be at least 12 characters long")
	v.checkCond(len(password) <= 72, "password", "must be at most 72 characters long")

	var hasUpper, hasLower, hasDigit, hasSpecial, hasSpace bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			hasSpace = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	v.checkCond(!hasSpace, "password", "must not contain whitespace")
	v.checkCond(hasUpper, "password", "must contain an uppercase letter")
	v.checkCond(hasLower, "password", "must contain a lowercase letter")
	v.checkCond(hasDigit, "password", "must contain a digit")
	v.checkCond(hasSpecial, "password", "must contain a special character")
}
