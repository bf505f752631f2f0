package service

import (
	"errors"
	"testing"
	"time"

	"notable-server/internal/domain"
	"notable-server/pkg/hash"
	"notable-server/pkg/jwt"
)

const testJWTSecret = "test-secret"

func newTestAuthService(userRepo *mockUserRepo) *AuthService {
	return NewAuthService(userRepo, testJWTSecret, 15*time.Minute, 24*time.Hour)
}

func seededAccount(t *testing.T, password string) *domain.User {
	t.Helper()
	hashed, err := hash.Hash(password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return &domain.User{
		ID:       "u1",
		Username: "dana",
		Email:    "dana@example.com",
		Password: hashed,
	}
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	userRepo := newMockUserRepo(seededAccount(t, "correct-horse"))
	svc := newTestAuthService(userRepo)

	err := svc.Register(&domain.RegisterRequest{
		Username: "someone-else",
		Email:    "dana@example.com",
		Password: "long-enough",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(userRepo.users) != 1 {
		t.Errorf("rejected registration created a user, %d accounts", len(userRepo.users))
	}
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	userRepo := newMockUserRepo(seededAccount(t, "correct-horse"))
	svc := newTestAuthService(userRepo)

	err := svc.Register(&domain.RegisterRequest{
		Username: "dana",
		Email:    "other@example.com",
		Password: "long-enough",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterStartsOnFreeTier(t *testing.T) {
	userRepo := newMockUserRepo()
	svc := newTestAuthService(userRepo)

	err := svc.Register(&domain.RegisterRequest{
		Username: "dana",
		Email:    "dana@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := userRepo.FindByUsername("dana")
	if err != nil {
		t.Fatalf("registered user not stored: %v", err)
	}
	if user.Upgraded {
		t.Error("new accounts must start on the free tier")
	}
	if user.DisplayName != "dana" {
		t.Errorf("display name should default to the username, got %q", user.DisplayName)
	}
	if user.Password == "correct-horse" {
		t.Error("password stored in plaintext")
	}
	if err := hash.Compare(user.Password, "correct-horse"); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	userRepo := newMockUserRepo(seededAccount(t, "correct-horse"))
	svc := newTestAuthService(userRepo)

	cases := []struct {
		name string
		req  domain.LoginRequest
	}{
		{"unknown email", domain.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"}},
		{"wrong password", domain.LoginRequest{Email: "dana@example.com", Password: "wrong-horse-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(&tc.req)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLoginReturnsTokensAndScrubbedUser(t *testing.T) {
	account := seededAccount(t, "correct-horse")
	account.Upgraded = true
	svc := newTestAuthService(newMockUserRepo(account))

	resp, err := svc.Login(&domain.LoginRequest{Email: "dana@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens in the login response")
	}
	if resp.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("unexpected expires_in %d", resp.ExpiresIn)
	}
	if resp.User.Password != "" {
		t.Error("login response leaked the password hash")
	}
	if !resp.User.Upgraded {
		t.Error("login response lost the tier state")
	}

	claims, err := jwt.ValidateToken(resp.AccessToken, testJWTSecret)
	if err != nil {
		t.Fatalf("access token does not validate: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("token issued for %q", claims.UserID)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestAuthService(newMockUserRepo(seededAccount(t, "correct-horse")))

	accessToken, err := jwt.GenerateToken("u1", 15*time.Minute, testJWTSecret)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	_, err = svc.RefreshToken(&domain.RefreshTokenRequest{RefreshToken: accessToken})
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for an access token, got %v", err)
	}
}

func TestRefreshMintsNewAccessToken(t *testing.T) {
	svc := newTestAuthService(newMockUserRepo(seededAccount(t, "correct-horse")))

	refreshToken, err := jwt.GenerateRefreshToken("u1", 24*time.Hour, testJWTSecret)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	resp, err := svc.RefreshToken(&domain.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}

	claims, err := jwt.ValidateToken(resp.AccessToken, testJWTSecret)
	if err != nil {
		t.Fatalf("minted token does not validate: %v", err)
	}
	if claims.Type != "access" || claims.UserID != "u1" {
		t.Errorf("unexpected claims %+v", claims)
	}
}
