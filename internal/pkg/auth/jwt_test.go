package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/acadsys/aulario/internal/app/models"
)

func testService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "aulario.test",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := testService(time.Hour)
	user := &models.User{ID: 42, Username: "ada", Role: models.RoleStudent}

	access, refresh, expiresIn, refreshExpiresIn, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty tokens")
	}
	if expiresIn != 3600 {
		t.Fatalf("expiresIn = %d, want 3600", expiresIn)
	}
	if refreshExpiresIn != 86400 {
		t.Fatalf("refreshExpiresIn = %d, want 86400", refreshExpiresIn)
	}

	claims, err := svc.ValidateAndExtractClaims(access)
	if err != nil {
		t.Fatalf("ValidateAndExtractClaims() error: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "ada" || claims.Role != models.RoleStudent {
		t.Fatalf("claims = %+v, want user 42 ada STUDENT", claims)
	}
	if claims.Issuer != "aulario.test" {
		t.Fatalf("issuer = %q, want aulario.test", claims.Issuer)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := testService(-time.Minute)
	user := &models.User{ID: 1, Username: "ada", Role: models.RoleAdmin}

	access, _, _, _, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair() error: %v", err)
	}

	if _, err := svc.ValidateToken(access); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("ValidateToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := testService(time.Hour)
	other := NewJWTService(JWTConfig{
		SecretKey:       "other-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "aulario.test",
	})

	access, _, _, _, err := svc.GenerateTokenPair(&models.User{ID: 1, Username: "ada", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateTokenPair() error: %v", err)
	}

	if _, err := other.ValidateToken(access); err == nil {
		t.Fatal("ValidateToken() accepted a token signed with a different secret")
	}
}

func TestValidateAndExtractClaimsRejectsEmpty(t *testing.T) {
	svc := testService(time.Hour)
	if _, err := svc.ValidateAndExtractClaims(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer prefix", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "raw token", header: "abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty header", header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractBearerToken() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ExtractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
