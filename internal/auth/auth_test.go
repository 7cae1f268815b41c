package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/krishanu7/battleship-engine/config"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewService(conn, config.Config{JWTSecret: "test-secret"}), mock
}

func TestRegister(t *testing.T) {
	s, mock := newMockService(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "created_at"}).
			AddRow(id.String(), "alice", "alice@example.com", now))

	user, err := s.Register(context.Background(), "alice", "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.ID != id || user.Username != "alice" {
		t.Errorf("Unexpected user %+v", user)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2")) != nil {
		t.Error("Expected the stored password to be a bcrypt hash of the input")
	}
}

func TestRegisterMapsUniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"users_username_key", ErrUsernameTaken},
		{"users_email_key", ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			s, mock := newMockService(t)
			mock.ExpectQuery("INSERT INTO users").
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			_, err := s.Register(context.Background(), "alice", "alice@example.com", "hunter2")
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegisterRequiresCredentials(t *testing.T) {
	s, _ := newMockService(t)
	if _, err := s.Register(context.Background(), "", "a@b.c", "pw"); err == nil {
		t.Error("Expected an error for an empty username")
	}
}

func TestLoginIssuesParsableToken(t *testing.T) {
	s, mock := newMockService(t)
	id := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash: %v", err)
	}

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "username", "email", "password", "created_at"}).
			AddRow(id.String(), "alice", "alice@example.com", string(hash), time.Now())
	}
	mock.ExpectQuery("SELECT id, username").WithArgs("alice").WillReturnRows(rows())
	mock.ExpectQuery("SELECT id, username").WithArgs("alice").WillReturnRows(rows())

	token, err := s.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("Expected a token, got %v", err)
	}
	got, err := s.ParseToken(token)
	if err != nil || got != id {
		t.Errorf("Expected token for %s, got %s (%v)", id, got, err)
	}

	if _, err := s.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	s, _ := newMockService(t)
	id := uuid.New()

	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := s.IssueToken(id)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	s.now = time.Now
	if _, err := s.ParseToken(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected expired token to be rejected, got %v", err)
	}

	other := NewService(nil, config.Config{JWTSecret: "other-secret"})
	foreign, err := other.IssueToken(id)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if _, err := s.ParseToken(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected token signed with another secret to be rejected, got %v", err)
	}
}

func TestUserFromRequest(t *testing.T) {
	s, _ := newMockService(t)
	id := uuid.New()
	token, err := s.IssueToken(id)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	header := httptest.NewRequest(http.MethodGet, "/", nil)
	header.Header.Set("Authorization", "Bearer "+token)
	if got, err := s.UserFromRequest(header); err != nil || !got.Valid || got.UUID != id {
		t.Errorf("Expected header token for %s, got %+v (%v)", id, got, err)
	}

	query := httptest.NewRequest(http.MethodGet, "/?token="+token, nil)
	if got, err := s.UserFromRequest(query); err != nil || got.UUID != id {
		t.Errorf("Expected query token for %s, got %+v (%v)", id, got, err)
	}

	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	if got, err := s.UserFromRequest(anonymous); err != nil || got.Valid {
		t.Errorf("Expected anonymous request, got %+v (%v)", got, err)
	}

	bad := httptest.NewRequest(http.MethodGet, "/?token=garbage", nil)
	if _, err := s.UserFromRequest(bad); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestLoginHandlerRejectsBadCredentials(t *testing.T) {
	s, mock := newMockService(t)
	mock.ExpectQuery("SELECT id, username").WillReturnError(errors.New("no rows"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"bob","password":"x"}`))
	NewAuthHandler(s).Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ErrInvalidCredentials.Error()) {
		t.Errorf("Expected error body, got %q", rec.Body.String())
	}
}

func TestRegisterHandlerRejectsMalformedBody(t *testing.T) {
	s, _ := newMockService(t)
	rec := httptest.NewRecorder()
	NewAuthHandler(s).Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}
