package user

import (
	"database/sql"
	"errors"
	"time"

	"expense_tracker/internal/auth"
	"expense_tracker/internal/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type UserService struct {
	repo      UserRepositoryInterface
	db        *sql.DB
	jwtSecret string
	tokenTTL  time.Duration
}

type UserServiceInterface interface {
	Register(name, email, password string) (int, error)
	Login(email, password string) (string, error)
	GetUserByID(id int) (*User, error)
}

func NewUserService(repo UserRepositoryInterface, db *sql.DB, jwtSecret string, tokenTTL time.Duration) UserServiceInterface {
	return &UserService{
		repo:      repo,
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new user with a hashed password. A second signup with
// the same email fails with ErrEmailTaken.
func (s *UserService) Register(name, email, password string) (int, error) {
	hashedPassword, err := auth.GeneratePasswordHash(password)
	if err != nil {
		return 0, errors.New("failed to hash password")
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
	}

	var id int
	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		id, err = s.repo.Create(tx, u)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		logrus.WithError(err).Error("Failed to register user")
		return 0, err
	}

	return id, nil
}

// Login checks the credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(email, password string) (string, error) {
	u, err := s.repo.GetByEmail(s.db, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := auth.ComparePasswordHash([]byte(u.Password), password); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", err
	}

	return token, nil
}

// GetUserByID retrieves user by ID
func (s *UserService) GetUserByID(id int) (*User, error) {
	return s.repo.GetByID(s.db, id)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
