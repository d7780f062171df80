package account

import "errors"

var (
	// ErrUserNotFound indicates the user doesn't exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates another account already uses the username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrWrongPassword indicates the current password did not match on a password change.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrInvalidInput indicates malformed account input.
	ErrInvalidInput = errors.New("invalid account input")
)

// InputError names the field that failed validation.
type InputError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
