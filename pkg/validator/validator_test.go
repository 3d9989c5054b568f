package validator

import (
	"strings"
	"testing"
)

func TestValidateRegister(t *testing.T) {
	valid := RegisterFields{Name: "Ana", Email: "ana@example.com", Password: "secret"}

	tests := []struct {
		name   string
		mutate func(f *RegisterFields)
		fields []string
	}{
		{name: "valid", mutate: func(f *RegisterFields) {}},
		{name: "missing email", mutate: func(f *RegisterFields) { f.Email = " " }, fields: []string{"email"}},
		{name: "bad email", mutate: func(f *RegisterFields) { f.Email = "ana-at-example" }, fields: []string{"email"}},
		{name: "short name", mutate: func(f *RegisterFields) { f.Name = "A" }, fields: []string{"name"}},
		{name: "long name", mutate: func(f *RegisterFields) { f.Name = strings.Repeat("a", 41) }, fields: []string{"name"}},
		{name: "short password", mutate: func(f *RegisterFields) { f.Password = "12345" }, fields: []string{"password"}},
		{name: "bad avatar", mutate: func(f *RegisterFields) { f.Avatar = "javascript:alert(1)" }, fields: []string{"avatar"}},
		{
			name:   "several",
			mutate: func(f *RegisterFields) { f.Email, f.Name, f.Password = "", "", "" },
			fields: []string{"email", "name", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			errs := ValidateRegister(f)
			if len(errs) != len(tt.fields) {
				t.Fatalf("errors = %v, want fields %v", errs, tt.fields)
			}
			for _, field := range tt.fields {
				if _, ok := errs[field]; !ok {
					t.Errorf("missing error for %s in %v", field, errs)
				}
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if errs := ValidateLogin("ana@example.com", "x"); errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	errs := ValidateLogin("", "")
	if errs["email"] == "" || errs["password"] == "" {
		t.Fatalf("errors = %v, want email and password", errs)
	}
}

func TestValidateProfileOnlyChecksPresentFields(t *testing.T) {
	if errs := ValidateProfile(ProfileFields{}); errs.HasErrors() {
		t.Fatalf("empty update rejected: %v", errs)
	}

	short := "A"
	avatar := "https://cdn.example.com/a.png"
	errs := ValidateProfile(ProfileFields{Name: &short, Avatar: &avatar})
	if len(errs) != 1 || errs["name"] == "" {
		t.Fatalf("errors = %v, want only name", errs)
	}

	many := make([]string, maxListLen+1)
	errs = ValidateProfile(ProfileFields{Platforms: &many})
	if errs["platforms"] == "" {
		t.Fatalf("errors = %v, want platforms", errs)
	}
}

func TestValidateGame(t *testing.T) {
	if errs := ValidateGame("Chess", "https://img.example.com/chess.png"); errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if errs := ValidateGame("  ", ""); errs["name"] == "" {
		t.Fatalf("errors = %v, want name", errs)
	}
	if errs := ValidateGame("Chess", "not a url"); errs["imageUrl"] == "" {
		t.Fatalf("errors = %v, want imageUrl", errs)
	}
}

func TestValidateMessage(t *testing.T) {
	if errs := ValidateMessage("gg"); errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if errs := ValidateMessage(" \n "); errs["text"] == "" {
		t.Fatalf("errors = %v, want text", errs)
	}
	if errs := ValidateMessage(strings.Repeat("x", 4001)); errs["text"] == "" {
		t.Fatalf("errors = %v, want text", errs)
	}
}
