package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-at-least-32-chars!"

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, err := GenerateAccessToken("console", RoleProgrammer, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "console" {
		t.Errorf("Subject = %q, want console", claims.Subject)
	}
	if claims.Role != RoleProgrammer {
		t.Errorf("Role = %q, want %q", claims.Role, RoleProgrammer)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
}

func TestGenerateAccessToken_UnknownRole(t *testing.T) {
	_, err := GenerateAccessToken("console", Role("root"), testSecret, 15)
	if !errors.Is(err, ErrUnknownRole) {
		t.Errorf("error = %v, want ErrUnknownRole", err)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateAccessToken("console", RoleOperator, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	sign := func(c CustomClaims, method jwt.SigningMethod, key any) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		return s
	}
	now := time.Now()

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"garbage", "not-a-valid-jwt", testSecret},
		{"wrong secret", valid, "another-secret-key-of-32-characters"},
		{
			name: "expired",
			token: sign(CustomClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "console",
					ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
				},
				Role: RoleOperator,
			}, jwt.SigningMethodHS256, []byte(testSecret)),
			secret: testSecret,
		},
		{
			name: "missing subject",
			token: sign(CustomClaims{
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
				Role:             RoleOperator,
			}, jwt.SigningMethodHS256, []byte(testSecret)),
			secret: testSecret,
		},
		{
			name: "unknown role",
			token: sign(CustomClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
				Role:             "root",
			}, jwt.SigningMethodHS256, []byte(testSecret)),
			secret: testSecret,
		},
		{
			name: "wrong algorithm",
			token: sign(CustomClaims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
				Role:             RoleAdministrator,
			}, jwt.SigningMethodHS512, []byte(testSecret)),
			secret: testSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestRole_Allows(t *testing.T) {
	tests := []struct {
		have, need Role
		want       bool
	}{
		{RoleOperator, RoleOperator, true},
		{RoleOperator, RoleProgrammer, false},
		{RoleOperator, RoleAdministrator, false},
		{RoleProgrammer, RoleOperator, true},
		{RoleProgrammer, RoleAdministrator, false},
		{RoleAdministrator, RoleOperator, true},
		{RoleAdministrator, RoleAdministrator, true},
		{Role(""), RoleOperator, false},
		{Role("root"), RoleOperator, false},
	}
	for _, tt := range tests {
		if got := tt.have.Allows(tt.need); got != tt.want {
			t.Errorf("%q.Allows(%q) = %v, want %v", tt.have, tt.need, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"operator", RoleOperator, false},
		{" Administrator ", RoleAdministrator, false},
		{"PROGRAMMER", RoleProgrammer, false},
		{"guest", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
