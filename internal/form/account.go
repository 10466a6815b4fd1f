package form

import (
	"strings"

	"github.com/sadopc/agenda/internal/model"
)

type LoginFields struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

func (f LoginFields) Request() (model.LoginRequest, error) {
	f.Username = strings.TrimSpace(f.Username)
	if err := check(f); err != nil {
		return model.LoginRequest{}, err
	}
	return model.LoginRequest{Username: f.Username, Password: f.Password}, nil
}

type RegisterFields struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email" label:"e-mail"`
	Password string `validate:"required"`
	Confirm  string `label:"password confirmation"`
}

// Validate checks required fields and the e-mail shape, then the password
// confirmation.
func (f RegisterFields) Validate() error {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	if err := check(f); err != nil {
		return err
	}
	if f.Password != f.Confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func (f RegisterFields) Request() (model.RegisterRequest, error) {
	if err := f.Validate(); err != nil {
		return model.RegisterRequest{}, err
	}
	return model.RegisterRequest{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}, nil
}

type VerifyFields struct {
	Email string `validate:"required,email" label:"e-mail"`
	Code  string `validate:"required"`
}

func (f VerifyFields) Request() (model.VerifyEmailRequest, error) {
	f.Email = strings.TrimSpace(f.Email)
	f.Code = strings.TrimSpace(f.Code)
	if err := check(f); err != nil {
		return model.VerifyEmailRequest{}, err
	}
	return model.VerifyEmailRequest{Email: f.Email, Code: f.Code}, nil
}
