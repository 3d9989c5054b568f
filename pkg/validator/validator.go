package validator

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const (
	minPasswordLen = 6
	maxListLen     = 50
)

// RegisterFields are the user-supplied fields of a new account.
type RegisterFields struct {
	Name        string
	Email       string
	Password    string
	Gamertag    string
	Description string
	Avatar      string
}

func ValidateRegister(f RegisterFields) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(f.Email, errs)
	validateName(f.Name, errs)

	// Password
	if f.Password == "" {
		errs.Add("password", "Password is required")
	} else if utf8.RuneCountInString(f.Password) < minPasswordLen {
		errs.Add("password", "Password must be at least 6 characters")
	}

	validateProfileText(f.Gamertag, f.Description, f.Avatar, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ProfileFields mirrors a partial profile update; nil means unchanged.
type ProfileFields struct {
	Name          *string
	Gamertag      *string
	Description   *string
	Avatar        *string
	FavoriteGames *[]string
	Platforms     *[]string
}

func ValidateProfile(f ProfileFields) ValidationErrors {
	errs := make(ValidationErrors)

	if f.Name != nil {
		validateName(*f.Name, errs)
	}
	validateProfileText(deref(f.Gamertag), deref(f.Description), deref(f.Avatar), errs)

	if f.FavoriteGames != nil && len(*f.FavoriteGames) > maxListLen {
		errs.Add("favoriteGames", "Too many favorite games")
	}
	if f.Platforms != nil && len(*f.Platforms) > maxListLen {
		errs.Add("platforms", "Too many platforms")
	}

	return errs
}

func ValidateGame(name, imageURL string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Game name is required")
	} else if utf8.RuneCountInString(name) > 100 {
		errs.Add("name", "Game name is too long")
	}

	if imageURL = strings.TrimSpace(imageURL); imageURL != "" && !isHTTPURL(imageURL) {
		errs.Add("imageUrl", "Image URL must be an http(s) URL")
	}

	return errs
}

func ValidateMessage(text string) ValidationErrors {
	errs := make(ValidationErrors)

	text = strings.TrimSpace(text)
	if text == "" {
		errs.Add("text", "Message text is required")
	} else if utf8.RuneCountInString(text) > 4000 {
		errs.Add("text", "Message is too long")
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

func validateName(name string, errs ValidationErrors) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case name == "":
		errs.Add("name", "Name is required")
	case n < 2:
		errs.Add("name", "Name must be at least 2 characters")
	case n > 40:
		errs.Add("name", "Name must be at most 40 characters")
	}
}

func validateProfileText(gamertag, description, avatar string, errs ValidationErrors) {
	if utf8.RuneCountInString(strings.TrimSpace(gamertag)) > 40 {
		errs.Add("gamertag", "Gamertag is too long")
	}
	if utf8.RuneCountInString(description) > 500 {
		errs.Add("description", "Description is too long")
	}
	if avatar = strings.TrimSpace(avatar); avatar != "" && !isHTTPURL(avatar) {
		errs.Add("avatar", "Avatar must be an http(s) URL")
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
