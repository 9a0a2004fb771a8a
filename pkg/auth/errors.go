package auth

import (
	"errors"
	"strings"
)

// Flow is the user action an auth error happened in; the same code reads
// differently depending on it.
type Flow string

const (
	FlowLogin    Flow = "login"
	FlowGoogle   Flow = "google"
	FlowRegister Flow = "register"
	FlowReset    Flow = "reset"
)

// Error carries a Firebase auth code such as "auth/user-not-found".
type Error struct {
	Code   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Detail
	}
	return e.Code
}

// Code extracts the auth code from err, or "" when err is not an *Error.
func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

var fallback = map[Flow]string{
	FlowLogin:    "Ocurrió un error al iniciar sesión",
	FlowGoogle:   "Error al iniciar sesión con Google",
	FlowRegister: "Ocurrió un error durante el registro",
	FlowReset:    "Ocurrió un error al enviar el correo",
}

const accountExistsMsg = "Ya existe una cuenta con el mismo correo pero con diferente método de inicio de sesión."

var messages = map[Flow]map[string]string{
	FlowLogin: {
		"auth/invalid-credential": "Credenciales incorrectas. Por favor, verifica tu correo y contraseña.",
		"auth/user-not-found":     "No existe una cuenta con este correo electrónico.",
		"auth/wrong-password":     "Contraseña incorrecta.",
		"auth/too-many-requests":  "Demasiados intentos fallidos. Por favor, inténtalo más tarde.",
	},
	FlowGoogle: {
		"auth/popup-closed-by-user":                     "Has cerrado la ventana de inicio de sesión.",
		"auth/cancelled-popup-request":                  "La solicitud fue cancelada.",
		"auth/account-exists-with-different-credential": accountExistsMsg,
	},
	FlowRegister: {
		"auth/email-already-in-use": "Este correo electrónico ya está en uso por otra cuenta.",
		"auth/invalid-email":        "Correo electrónico inválido.",
		"auth/weak-password":        "La contraseña es demasiado débil.",
	},
	FlowReset: {
		"auth/user-not-found":    "No existe una cuenta con este correo electrónico.",
		"auth/invalid-email":     "Correo electrónico inválido.",
		"auth/too-many-requests": "Demasiados intentos. Por favor, inténtalo más tarde.",
	},
}

// Message is the Spanish text shown for code in flow. Unknown codes get the
// flow's generic message.
func Message(flow Flow, code string) string {
	if m, ok := messages[flow][code]; ok {
		return m
	}
	return fallback[flow]
}

// restCodes maps Identity Toolkit REST error messages onto SDK codes.
var restCodes = map[string]string{
	"EMAIL_EXISTS":                     "auth/email-already-in-use",
	"EMAIL_NOT_FOUND":                  "auth/user-not-found",
	"INVALID_PASSWORD":                 "auth/wrong-password",
	"INVALID_LOGIN_CREDENTIALS":        "auth/invalid-credential",
	"INVALID_EMAIL":                    "auth/invalid-email",
	"WEAK_PASSWORD":                    "auth/weak-password",
	"TOO_MANY_ATTEMPTS_TRY_LATER":      "auth/too-many-requests",
	"USER_DISABLED":                    "auth/user-disabled",
	"FEDERATED_USER_ID_ALREADY_LINKED": "auth/account-exists-with-different-credential",
	"INVALID_IDP_RESPONSE":             "auth/invalid-credential",
}

// FromREST turns an Identity Toolkit error message ("WEAK_PASSWORD : Password
// should be at least 6 characters") into an *Error.
func FromREST(msg string) *Error {
	key, detail, _ := strings.Cut(msg, ":")
	key = strings.TrimSpace(key)
	code, ok := restCodes[key]
	if !ok {
		code = "auth/" + strings.ToLower(strings.ReplaceAll(key, "_", "-"))
	}
	return &Error{Code: code, Detail: strings.TrimSpace(detail)}
}
