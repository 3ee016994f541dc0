package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
	"github.com/rpupo63/teammatch-backend/testutil"
)

func TestRegisterNormalizesInput(t *testing.T) {
	f := newFixture()

	user, err := f.accounts.Register(context.Background(), RegisterInput{
		Nickname: "  alice ",
		Email:    " A@X.com ",
		Secret:   "hunter22",
		Level:    "Senior",
		Language: " go ",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Nickname != "alice" {
		t.Fatalf("expected trimmed nickname, got %q", user.Nickname)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Level != models.LevelSenior {
		t.Fatalf("expected level senior, got %q", user.Level)
	}
	if user.PasswordHash == "hunter22" {
		t.Fatal("expected secret to be hashed")
	}
	if user.Version != 1 {
		t.Fatalf("expected version 1, got %d", user.Version)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	valid := RegisterInput{Nickname: "alice", Email: "a@x.com", Secret: "hunter22", Level: "junior", Language: "go"}

	tests := []struct {
		name  string
		edit  func(*RegisterInput)
		field string
	}{
		{"missing nickname", func(in *RegisterInput) { in.Nickname = " " }, "nickname"},
		{"short nickname", func(in *RegisterInput) { in.Nickname = "al" }, "nickname"},
		{"nickname with spaces", func(in *RegisterInput) { in.Nickname = "al ice" }, "nickname"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short secret", func(in *RegisterInput) { in.Secret = "abc" }, "password"},
		{"unknown level", func(in *RegisterInput) { in.Level = "lead" }, "level"},
		{"missing language", func(in *RegisterInput) { in.Language = "" }, "language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := valid
			tt.edit(&in)

			_, err := f.accounts.Register(context.Background(), in)
			if !errs.IsBadRequest(err) {
				t.Fatalf("expected bad request, got %v", err)
			}
			var apiErr *errs.ApiErr
			if !errors.As(err, &apiErr) || apiErr.Field != tt.field {
				t.Fatalf("expected field %q, got %v", tt.field, err)
			}
			if f.store.UserCount() != 0 {
				t.Fatal("expected no user to be stored")
			}
		})
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	f := newFixture()
	f.register(t, "alice")

	_, err := f.accounts.Register(context.Background(), RegisterInput{
		Nickname: "alice", Email: "other@x.com", Secret: "hunter22", Level: "junior", Language: "go",
	})
	if !errs.IsConflict(err) {
		t.Fatalf("expected conflict for nickname, got %v", err)
	}
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) || apiErr.Field != "nickname" {
		t.Fatalf("expected nickname field, got %v", err)
	}

	_, err = f.accounts.Register(context.Background(), RegisterInput{
		Nickname: "alice2", Email: "ALICE@x.com", Secret: "hunter22", Level: "junior", Language: "go",
	})
	if !errs.IsConflict(err) {
		t.Fatalf("expected conflict for email, got %v", err)
	}
	if f.store.UserCount() != 1 {
		t.Fatalf("expected one stored user, got %d", f.store.UserCount())
	}
}

func TestRegisterConcurrentSameNickname(t *testing.T) {
	f := newFixture()
	const attempts = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.accounts.Register(context.Background(), RegisterInput{
				Nickname: "alice", Email: "a@x.com", Secret: "hunter22", Level: "junior", Language: "go",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errs.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
	if f.store.UserCount() != 1 {
		t.Fatalf("expected one stored user, got %d", f.store.UserCount())
	}
}

func TestRegisterPersistenceFailure(t *testing.T) {
	f := newFixture()
	f.store.Fail(errors.New("disk full"))

	_, err := f.accounts.Register(context.Background(), RegisterInput{
		Nickname: "alice", Email: "a@x.com", Secret: "hunter22", Level: "junior", Language: "go",
	})
	if !errs.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice")
	ctx := context.Background()

	for _, identifier := range []string{"alice", "alice@x.com", "ALICE@x.com"} {
		user, err := f.accounts.Authenticate(ctx, identifier, "secret-alice")
		if err != nil {
			t.Fatalf("authenticate %q: %v", identifier, err)
		}
		if user.ID != alice.ID {
			t.Fatalf("expected %s, got %s", alice.ID, user.ID)
		}
	}

	if _, err := f.accounts.Authenticate(ctx, "alice", "wrong"); !errs.IsInvalidCredentials(err) {
		t.Fatalf("expected invalid credentials for wrong secret, got %v", err)
	}
	if _, err := f.accounts.Authenticate(ctx, "nobody", "secret-alice"); !errs.IsInvalidCredentials(err) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
	if _, err := f.accounts.Authenticate(ctx, "", ""); !errs.IsInvalidCredentials(err) {
		t.Fatalf("expected invalid credentials for empty input, got %v", err)
	}
}

func TestAuthenticateWithBcrypt(t *testing.T) {
	store := testutil.NewStore()
	accounts := NewAccountService(store.Users(), BcryptHasher{Cost: bcrypt.MinCost})
	ctx := context.Background()

	if _, err := accounts.Register(ctx, RegisterInput{
		Nickname: "bob", Email: "b@x.com", Secret: "correct horse", Level: "junior", Language: "go",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "bob", "correct horse"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "bob", "battery staple"); !errs.IsInvalidCredentials(err) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice")
	ctx := context.Background()

	name := "Alice A."
	level := "SENIOR"
	user, err := f.accounts.UpdateProfile(ctx, alice.ID, ProfileInput{Name: &name, Level: &level})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if user.Name != name || user.Level != models.LevelSenior {
		t.Fatalf("expected updated fields, got %q %q", user.Name, user.Level)
	}
	if user.Version != 2 {
		t.Fatalf("expected version 2, got %d", user.Version)
	}

	stale := 1
	bio := "late write"
	if _, err := f.accounts.UpdateProfile(ctx, alice.ID, ProfileInput{Bio: &bio, Version: &stale}); !errs.IsStaleWrite(err) {
		t.Fatalf("expected stale write, got %v", err)
	}

	stored, err := f.accounts.Profile(ctx, alice.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if stored.Bio != "" {
		t.Fatalf("expected stale write to leave bio unchanged, got %q", stored.Bio)
	}
}

func TestRegisterRejectsOverlongSecret(t *testing.T) {
	f := newFixture()
	_, err := f.accounts.Register(context.Background(), RegisterInput{
		Nickname: "alice", Email: "a@x.com", Secret: strings.Repeat("a", 73), Level: "junior", Language: "go",
	})
	if !errs.IsInvalidFieldError(err) {
		t.Fatalf("expected invalid field, got %v", err)
	}
}
