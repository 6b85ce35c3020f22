package account

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/suPer8Hu/serene-backend/internal/auth"
	"github.com/suPer8Hu/serene-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrIdentifierRequired = errors.New("email or phone is required")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPUnavailable     = errors.New("one-time passcodes are not available")
)

// OTPStore keeps pending codes with a TTL. ConsumeOTP must delete what it returns.
type OTPStore interface {
	SaveOTP(ctx context.Context, identifier, code string, ttl time.Duration) error
	ConsumeOTP(ctx context.Context, identifier string) (string, error)
}

type OTPSender interface {
	SendOTP(ctx context.Context, identifier, code string) error
}

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	OTPTTL    time.Duration
	OTPStore  OTPStore  // nil disables passcode login
	OTPSender OTPSender // nil means codes are stored but not delivered
	Logger    *zap.Logger
}

type Service struct {
	repo      *Repo
	secret    string
	tokenTTL  time.Duration
	otpTTL    time.Duration
	otps      OTPStore
	sender    OTPSender
	log       *zap.Logger
	dummyOnce sync.Once
	dummyHash string
}

func NewService(repo *Repo, opts Options) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		secret:   opts.JWTSecret,
		tokenTTL: opts.TokenTTL,
		otpTTL:   opts.OTPTTL,
		otps:     opts.OTPStore,
		sender:   opts.OTPSender,
		log:      opts.Logger,
	}
}

type Summary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type Session struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        Summary `json:"user"`
}

type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type LoginInput struct {
	Email    string
	Phone    string
	Password string
	OTP      string
}

func summarize(u *models.User) Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// identifier is the user id rule: the email when given, otherwise the phone.
func identifier(email, phone string) string {
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		return email
	}
	return strings.TrimSpace(phone)
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)
	id := identifier(email, phone)
	if id == "" {
		return nil, ErrIdentifierRequired
	}

	if _, err := s.repo.GetUser(ctx, id); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		ID:    id,
		Name:  name,
		Email: optional(email),
		Phone: optional(phone),
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return s.issue(user)
}

// Login reports every failure as ErrInvalidCredentials so callers cannot
// tell a wrong password from an unknown account.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	id := identifier(in.Email, in.Phone)
	if id == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if in.Password != "" {
			// keep the response time of unknown users in line with known ones
			auth.CheckPassword(s.dummy(), in.Password)
		}
		return nil, ErrInvalidCredentials
	}

	switch {
	case in.Password != "":
		if user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, in.Password) {
			return nil, ErrInvalidCredentials
		}
	case in.OTP != "":
		if !s.verifyOTP(ctx, id, in.OTP) {
			return nil, ErrInvalidCredentials
		}
	default:
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastActive(ctx, id); err != nil {
		s.log.Warn("touch last_active failed", zap.String("user_id", id), zap.Error(err))
	}
	return s.issue(user)
}

func (s *Service) verifyOTP(ctx context.Context, id, code string) bool {
	if s.otps == nil {
		return false
	}
	expected, err := s.otps.ConsumeOTP(ctx, id)
	if err != nil {
		s.log.Debug("otp lookup failed", zap.String("user_id", id), zap.Error(err))
		return false
	}
	return auth.EqualOTP(expected, strings.TrimSpace(code))
}

// RequestOTP stores a fresh code for an existing user and tries to deliver it.
// Unknown identifiers succeed silently.
func (s *Service) RequestOTP(ctx context.Context, email, phone string) error {
	id := identifier(email, phone)
	if id == "" {
		return ErrIdentifierRequired
	}
	if s.otps == nil {
		return ErrOTPUnavailable
	}

	if _, err := s.repo.GetUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.SaveOTP(ctx, id, code, s.otpTTL); err != nil {
		return err
	}

	if s.sender == nil {
		s.log.Warn("otp stored without a delivery channel", zap.String("user_id", id))
		return nil
	}
	if err := s.sender.SendOTP(ctx, id, code); err != nil {
		s.log.Warn("otp delivery failed", zap.String("user_id", id), zap.Error(err))
	}
	return nil
}

func (s *Service) Me(ctx context.Context, userID string) (*Summary, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum := summarize(u)
	return &sum, nil
}

func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	return s.repo.DeleteAccount(ctx, userID)
}

func (s *Service) issue(u *models.User) (*Session, error) {
	token, err := auth.SignJWT(u.ID, s.secret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "bearer", User: summarize(u)}, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("serene-timing-equalizer")
	})
	return s.dummyHash
}
