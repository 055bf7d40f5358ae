package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"Inshorts/internal/auth"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ShowLoginPage renders the login form; a logged-in visitor goes home.
func ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	if visitor(r).Principal() != nil {
		redirect(w, r, "/")
		return
	}
	render(w, r, http.StatusOK, "login.html", map[string]any{"Title": "Login"})
}

// HandleLogin authenticates against the backend and goes home.
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	data := map[string]any{"Title": "Login", "Username": username}

	if username == "" || strings.TrimSpace(password) == "" {
		data["Error"] = "Please enter both username and password."
		render(w, r, http.StatusBadRequest, "login.html", data)
		return
	}
	if err := visitor(r).Auth.Login(r.Context(), username, password); err != nil {
		data["Error"] = auth.Message(err, "Failed to login. Please try again.")
		render(w, r, http.StatusUnauthorized, "login.html", data)
		return
	}
	redirect(w, r, "/")
}

func ShowRegisterPage(w http.ResponseWriter, r *http.Request) {
	if visitor(r).Principal() != nil {
		redirect(w, r, "/")
		return
	}
	render(w, r, http.StatusOK, "register.html", map[string]any{"Title": "Register"})
}

// HandleRegister signs the visitor up and logs them in.
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	data := map[string]any{"Title": "Register", "Username": username, "Email": email}

	var msg string
	switch {
	case username == "" || email == "" || password == "":
		msg = "Please fill out all fields."
	case !emailRe.MatchString(email):
		msg = "Please enter a valid email address."
	case password != r.FormValue("confirm"):
		msg = "Passwords do not match."
	}
	if msg != "" {
		data["Error"] = msg
		render(w, r, http.StatusBadRequest, "register.html", data)
		return
	}

	if err := visitor(r).Auth.Register(r.Context(), username, email, password); err != nil {
		data["Error"] = auth.Message(err, "Failed to register. Please try again.")
		render(w, r, http.StatusBadRequest, "register.html", data)
		return
	}
	redirect(w, r, "/")
}

// HandleLogout ends the session. The visitor is logged out locally even
// when the backend call fails.
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := visitor(r).Auth.Logout(r.Context()); err != nil {
		zap.L().Warn("logout failed", zap.Error(err))
	}
	redirect(w, r, "/login")
}
