package account

import (
	"context"
	"net/mail"
	"strings"
	"time"

	cerrors "github.com/crowdstake/crowdstake-server/common/errors"
	"github.com/crowdstake/crowdstake-server/common/logging"
	"github.com/crowdstake/crowdstake-server/database/db"
	"github.com/crowdstake/crowdstake-server/database/models/crowdfund"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultRole = "user"

var (
	ErrUserExists         = cerrors.Conflict("User with this email or username already exists.")
	ErrInvalidCredentials = cerrors.Unauthorized("Invalid email or password.")
	ErrUserNotFound       = cerrors.NotFound("User not found.")
)

// SignupRequest registers a user.
type SignupRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (r *SignupRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return cerrors.Validation("Username, email and password are required.")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return cerrors.Validation("Invalid email.")
	}
	return nil
}

// LoginRequest checks a password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || r.Password == "" {
		return cerrors.Validation("Email and password are required.")
	}
	return nil
}

// Service handles signup, login and profiles.
type Service struct {
	db     *gorm.DB
	dao    *db.DAO
	cost   int
	logger logging.Logger
}

func NewService(handle *gorm.DB) *Service {
	return &Service{
		db:     handle,
		dao:    db.NewDAO(),
		cost:   bcrypt.DefaultCost,
		logger: logging.NewLoggerTag("account"),
	}
}

func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*crowdfund.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, cerrors.Persistence("hash password", err)
	}
	u := &crowdfund.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         defaultRole,
	}
	err = db.Transaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		exists, err := s.dao.UserExists(tx, req.Username, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrUserExists
		}
		return s.dao.CreateUser(tx, u)
	})
	if db.IsUniqueViolation(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, cerrors.Persistence("signup", err)
	}
	s.logger.Info("user %d signed up: %s", u.UserID, u.Username)
	return u, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*crowdfund.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	handle := s.db.WithContext(ctx)
	u, err := s.dao.GetUserByEmail(handle, req.Email)
	if err != nil {
		return nil, cerrors.Persistence("login", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if err := s.dao.TouchLastLogin(handle, u.UserID, now); err != nil {
		return nil, cerrors.Persistence("login", err)
	}
	u.LastLogin = &now
	return u, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (*crowdfund.User, error) {
	if userID <= 0 {
		return nil, cerrors.Validation("Invalid user id.")
	}
	u, err := s.dao.GetUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, cerrors.Persistence("profile", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
