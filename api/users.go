package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	v := newValidator()
	v.checkCond(input.Username != "", "username", "must be provided")
	v.checkCond(len(input.Username) <= 255, "username", "must be at most 255 characters")
	v.checkEmail(input.Email)
	v.checkPassword(input.Password)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}

	// Fast-path duplicate checks. The unique constraints on the insert
	// below are the authority under concurrent signups.
	existing, err := app.store.getUserByUsername(input.Username)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if existing != nil {
		writeError(w, errDuplicateUsername, http.StatusConflict)
		return
	}
	existing, err = app.store.getUserByEmail(input.Email)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if existing != nil {
		writeError(w, errDuplicateEmail, http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		app.serverError(w, err)
		return
	}

	// Signup always assigns USER. Admin accounts exist only via seeding.
	u := &user{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         roleUser,
	}
	err = app.store.insertUser(u)
	switch {
	case errors.Is(err, errDuplicateUsername), errors.Is(err, errDuplicateEmail):
		writeError(w, err, http.StatusConflict)
		return
	case err != nil:
		app.serverError(w, err)
		return
	}

	err = app.establishSession(w, u)
	if err != nil {
		app.serverError(w, err)
		return
	}
	app.sendWelcomeMail(u)
	writeJSON(w, http.StatusOK, publicView(u))
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	v := newValidator()
	v.checkCond(input.Username != "", "username", "must be provided")
	v.checkCond(input.Password != "", "password", "must be provided")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}

	// The same generic 401 covers an unknown username and a wrong
	// password.
	u, err := app.store.getUserByUsername(input.Username)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if u == nil {
		writeError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}
	err = bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.Password))
	if err != nil {
		writeError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}

	err = app.establishSession(w, u)
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicView(u))
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	writeJSON(w, http.StatusOK, publicView(u))
}
