package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose is signed into every token so that a token minted for one flow
// can never be redeemed by another
type Purpose string

const (
	PurposeEmailVerify Purpose = "email_verify"
	PurposeSession     Purpose = "session"
	PurposeDownload    Purpose = "download"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpired      = errors.New("token expired")
	ErrNoSecret     = errors.New("no signing secret provided")
)

type Claims struct {
	Purpose Purpose `json:"purpose"`
	Email   string  `json:"email,omitempty"`
	UserID  string  `json:"user_id,omitempty"`
	FileID  uint    `json:"file_id,omitempty"`
	jwt.RegisteredClaims
}

type TokenOpts struct {
	Secret      string
	VerifyTTL   time.Duration
	SessionTTL  time.Duration
	DownloadTTL time.Duration

	// Now overrides the clock used for issuing and checking expiry
	Now func() time.Time
}

// TokenService issues and verifies HS256 signed tokens with a single
// process-wide secret
type TokenService struct {
	secret      []byte
	now         func() time.Time
	verifyTTL   time.Duration
	sessionTTL  time.Duration
	downloadTTL time.Duration
}

func NewTokenService(o TokenOpts) (*TokenService, error) {
	if o.Secret == "" {
		return nil, ErrNoSecret
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	if o.VerifyTTL <= 0 {
		o.VerifyTTL = time.Hour
	}

	if o.SessionTTL <= 0 {
		o.SessionTTL = time.Hour * 24
	}

	if o.DownloadTTL <= 0 {
		o.DownloadTTL = time.Minute * 5
	}

	return &TokenService{
		secret:      []byte(o.Secret),
		now:         o.Now,
		verifyTTL:   o.VerifyTTL,
		sessionTTL:  o.SessionTTL,
		downloadTTL: o.DownloadTTL,
	}, nil
}

// Issue signs c for purpose p. The purpose, issue time and expiry of c are
// always overwritten.
func (s *TokenService) Issue(p Purpose, c Claims, ttl time.Duration) (string, error) {
	if p == "" {
		return "", errors.New("no token purpose provided")
	}

	if ttl <= 0 {
		return "", errors.New("token ttl must be bigger than 0")
	}

	now := s.now()

	c.Purpose = p
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token, %w", err)
	}

	return t, nil
}

// Verify checks the signature, expiry and purpose of token. Expiry is the only
// failure reported separately, everything else collapses into ErrInvalidToken.
func (s *TokenService) Verify(p Purpose, token string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}

		return nil, ErrInvalidToken
	}

	if claims.Purpose != p {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *TokenService) VerificationToken(email string) (string, error) {
	return s.Issue(PurposeEmailVerify, Claims{Email: email}, s.verifyTTL)
}

func (s *TokenService) SessionToken(userID string) (string, error) {
	return s.Issue(PurposeSession, Claims{UserID: userID}, s.sessionTTL)
}

func (s *TokenService) DownloadToken(fileID uint, userID string) (string, error) {
	return s.Issue(PurposeDownload, Claims{FileID: fileID, UserID: userID}, s.downloadTTL)
}
