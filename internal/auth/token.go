package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/priceopt/priceopt/internal/shared"
)

// Token purposes. Access and verification tokens share the same envelope and
// signing secret, so the purpose claim must be checked explicitly on verify.
const (
	PurposeAccess       = "access"
	PurposeVerification = "verification"
)

// Claims is the JWT payload carried by every token issued by this service.
type Claims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

// TokenIssuer creates and validates signed bearer tokens. Tokens are
// self-contained; no session store is consulted.
type TokenIssuer struct {
	secret          []byte
	method          jwt.SigningMethod
	accessTTL       time.Duration
	verificationTTL time.Duration
}

// NewTokenIssuer builds a TokenIssuer for the given symmetric secret and
// algorithm name (HS256, HS384 or HS512).
func NewTokenIssuer(secret, algorithm string, accessTTL, verificationTTL time.Duration) (*TokenIssuer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: signing algorithm %q is not symmetric", algorithm)
	}
	return &TokenIssuer{
		secret:          []byte(secret),
		method:          method,
		accessTTL:       accessTTL,
		verificationTTL: verificationTTL,
	}, nil
}

// IssueAccessToken signs a short-lived access token for the given user.
func (t *TokenIssuer) IssueAccessToken(userID int64) (string, error) {
	return t.sign(strconv.FormatInt(userID, 10), PurposeAccess, t.accessTTL)
}

// IssueVerificationToken signs an email-confirmation token with the email as
// its subject.
func (t *TokenIssuer) IssueVerificationToken(email string) (string, error) {
	return t.sign(email, PurposeVerification, t.verificationTTL)
}

// VerifyAccessToken validates signature, expiry and purpose and returns the
// subject user id.
func (t *TokenIssuer) VerifyAccessToken(token string) (int64, error) {
	claims, err := t.verify(token, PurposeAccess)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, shared.ErrInvalidToken
	}
	return id, nil
}

// VerifyVerificationToken validates signature, expiry and purpose and returns
// the subject email.
func (t *TokenIssuer) VerifyVerificationToken(token string) (string, error) {
	claims, err := t.verify(token, PurposeVerification)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (t *TokenIssuer) sign(subject, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(t.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) verify(raw, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{t.method.Alg()}))
	if err != nil || !token.Valid {
		return nil, shared.ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, shared.ErrWrongTokenPurpose
	}
	return claims, nil
}
