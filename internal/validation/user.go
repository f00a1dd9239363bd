package validation

import (
	"strings"

	"melodia/internal/models"
)

// RegisterInput is a validated sign-up request.
type RegisterInput struct {
	Email    string
	Password string
	Username *string
	FullName *string
}

// LoginInput is a validated login request.
type LoginInput struct {
	Email    string
	Password string
}

// ValidateRegister requires email and password; username and fullName are optional.
func ValidateRegister(p *Payload) (RegisterInput, error) {
	f := newFields(p)
	in := RegisterInput{
		Email:    strings.ToLower(f.requiredString("email", 254)),
		Username: f.optionalString("username", 30),
		FullName: f.optionalString("fullName", 120),
	}
	if f.err != nil {
		return in, f.err
	}
	if err := ValidateEmail(in.Email); err != nil {
		return in, models.NewValidationError(err.Error())
	}
	if in.Username != nil {
		if err := ValidateUsername(*in.Username); err != nil {
			return in, models.NewValidationError(err.Error())
		}
	}

	// Passwords are not quote-stripped; every character counts.
	password, ok, err := p.String("password")
	if err != nil {
		return in, models.NewValidationError("password " + err.Error())
	}
	if !ok || password == "" {
		return in, models.NewValidationError("password is required")
	}
	if err := ValidatePassword(password); err != nil {
		return in, models.NewValidationError(err.Error())
	}
	in.Password = password
	return in, nil
}

// ValidateLogin requires email and password.
func ValidateLogin(p *Payload) (LoginInput, error) {
	f := newFields(p)
	in := LoginInput{Email: strings.ToLower(f.requiredString("email", 254))}
	if f.err != nil {
		return in, f.err
	}
	password, ok, err := p.String("password")
	if err != nil {
		return in, models.NewValidationError("password " + err.Error())
	}
	if !ok || password == "" {
		return in, models.NewValidationError("password is required")
	}
	in.Password = password
	return in, nil
}

// ValidateUserUpdate returns the profile changes. A new password is returned
// in plain text under "password"; the caller hashes it.
func ValidateUserUpdate(p *Payload) (Changes, error) {
	f := newFields(p)
	c := Changes{}
	f.changeNullableString(c, "username", "username", 30)
	f.changeNullableString(c, "fullName", "full_name", 120)
	f.changeNullableString(c, "bio", "bio", 2000)
	f.changeNullableString(c, "profilePicture", "profile_picture", 0)
	if f.err != nil {
		return nil, f.err
	}

	if username, ok := c["username"].(string); ok {
		if err := ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	password, ok, err := p.String("password")
	if err != nil {
		return nil, models.NewValidationError("password " + err.Error())
	}
	if ok {
		if password == "" {
			return nil, models.NewValidationError("password cannot be empty")
		}
		if err := ValidatePassword(password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		c["password"] = password
	}
	return c, nil
}
