package services

import (
	"context"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/teammatch-backend/errs"
	"github.com/rpupo63/teammatch-backend/models"
)

var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

const (
	minSecretLength = 6
	// bcrypt ignores input beyond 72 bytes and x/crypto rejects it outright.
	maxSecretLength = 72
)

// RegisterInput is what a new member submits to create an account.
type RegisterInput struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Secret   string `json:"password"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Level    string `json:"level"`
	Language string `json:"language"`
}

// ProfileInput carries the profile fields a member may change. Nil fields are left
// as they are. Version, when set, must equal the stored version.
type ProfileInput struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Level    *string `json:"level"`
	Language *string `json:"language"`
	Version  *int    `json:"version"`
}

type AccountService struct {
	users  UserStore
	hasher Hasher
	logger zerolog.Logger
}

func NewAccountService(users UserStore, hasher Hasher) AccountService {
	return AccountService{
		users:  users,
		hasher: hasher,
		logger: log.With().Str("service", "accounts").Logger(),
	}
}

// NormalizeRegisterInput trims and validates a registration request.
func NormalizeRegisterInput(in RegisterInput) (RegisterInput, error) {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Level = strings.ToLower(strings.TrimSpace(in.Level))
	in.Language = strings.TrimSpace(in.Language)

	switch {
	case in.Nickname == "":
		return RegisterInput{}, errs.NewMissingRequiredFieldError("nickname")
	case !nicknamePattern.MatchString(in.Nickname):
		return RegisterInput{}, errs.NewInvalidFieldError("nickname", "use 3-32 letters, digits, '.', '_' or '-'")
	case in.Email == "":
		return RegisterInput{}, errs.NewMissingRequiredFieldError("email")
	case in.Secret == "":
		return RegisterInput{}, errs.NewMissingRequiredFieldError("password")
	case in.Language == "":
		return RegisterInput{}, errs.NewMissingRequiredFieldError("language")
	case in.Level == "":
		return RegisterInput{}, errs.NewMissingRequiredFieldError("level")
	}

	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return RegisterInput{}, errs.NewInvalidFieldError("email", "not a valid address")
	}
	if len(in.Secret) < minSecretLength || len(in.Secret) > maxSecretLength {
		return RegisterInput{}, errs.NewInvalidFieldError("password", "must be between 6 and 72 bytes")
	}
	if !models.ValidLevel(in.Level) {
		return RegisterInput{}, errs.NewInvalidFieldError("level", "must be junior, middle or senior")
	}
	return in, nil
}

// Register creates a member account. A nickname or email that is already taken is
// reported as Conflict; the store's unique indexes decide when two registrations race.
func (s AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in, err := NormalizeRegisterInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.ensureFree(ctx, "nickname", in.Nickname, s.users.FindByNickname); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, "email", in.Email, s.users.FindByEmail); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Secret)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("hash credentials", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Nickname:     in.Nickname,
		Email:        in.Email,
		Name:         in.Name,
		Bio:          in.Bio,
		Level:        in.Level,
		Language:     in.Language,
		PasswordHash: hash,
		Version:      1,
	}
	if err := s.users.Add(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID.String()).Str("nickname", user.Nickname).Msg("user registered")
	return user, nil
}

func (s AccountService) ensureFree(ctx context.Context, field, value string, find func(context.Context, string) (*models.User, error)) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return errs.NewAlreadyExists("user", field)
	case errs.IsNotFound(err):
		return nil
	default:
		return err
	}
}

// Authenticate resolves identifier, a nickname or an email, and checks secret against
// the stored hash. Unknown identifiers and wrong secrets both yield InvalidCredentials.
func (s AccountService) Authenticate(ctx context.Context, identifier, secret string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return nil, errs.NewInvalidCredentials()
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.FindByNickname(ctx, identifier)
	}
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewInvalidCredentials()
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(user.PasswordHash, secret)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("verify credentials", err)
	}
	if !ok {
		s.logger.Debug().Str("userID", user.ID.String()).Msg("credential mismatch")
		return nil, errs.NewInvalidCredentials()
	}
	return user, nil
}

// Profile returns the member with the given ID
func (s AccountService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies in to the acting member's own profile with a versioned write.
func (s AccountService) UpdateProfile(ctx context.Context, actorID uuid.UUID, in ProfileInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if in.Version != nil && *in.Version != user.Version {
		return nil, errs.NewStaleWrite("user", *in.Version)
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Level != nil {
		level := strings.ToLower(strings.TrimSpace(*in.Level))
		if !models.ValidLevel(level) {
			return nil, errs.NewInvalidFieldError("level", "must be junior, middle or senior")
		}
		user.Level = level
	}
	if in.Language != nil {
		language := strings.TrimSpace(*in.Language)
		if language == "" {
			return nil, errs.NewMissingRequiredFieldError("language")
		}
		user.Language = language
	}

	if err := s.users.Update(ctx, user, user.Version); err != nil {
		return nil, err
	}
	return user, nil
}
