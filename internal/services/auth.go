package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

const (
	AccessTokenCookie   = "access_token"
	DefaultAccessTTL    = 30 * 24 * time.Hour
	postMessageRedirect = "postmessage"
)

// User is the signed-in identity carried by the access token.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type JWTClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// CodeExchanger trades an authorization code for tokens. *oauth2.Config
// satisfies it.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// IDTokenValidator has the signature of idtoken.Validate.
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type GoogleAuthConfig struct {
	ClientID       string
	ClientSecret   string
	RedirectURL    string
	AllowedDomain  string
	JWTSecret      string
	AccessTokenTTL time.Duration
}

type AuthService interface {
	// SignInWithGoogle exchanges a sign-in code and returns the user with a
	// freshly signed access token.
	SignInWithGoogle(ctx context.Context, code string) (*User, string, error)
	IssueToken(u User) (string, error)
	ParseToken(token string) (*User, error)
	AccessTTL() time.Duration
}

type authService struct {
	log       *logger.Logger
	cfg       GoogleAuthConfig
	exchanger CodeExchanger
	validate  IDTokenValidator
	now       func() time.Time
}

// NewAuthService wires the Google endpoint. Pass nil exchanger/validator to use
// the real oauth2 config and idtoken.Validate.
func NewAuthService(log *logger.Logger, cfg GoogleAuthConfig, exchanger CodeExchanger, validate IDTokenValidator) AuthService {
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = postMessageRedirect
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = DefaultAccessTTL
	}
	if exchanger == nil {
		exchanger = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		}
	}
	if validate == nil {
		validate = idtoken.Validate
	}
	return &authService{
		log:       log.With("service", "AuthService"),
		cfg:       cfg,
		exchanger: exchanger,
		validate:  validate,
		now:       time.Now,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.cfg.AccessTokenTTL }

func (as *authService) SignInWithGoogle(ctx context.Context, code string) (*User, string, error) {
	const op = "auth.google"
	if strings.TrimSpace(code) == "" {
		return nil, "", invalid(op, "code is required")
	}
	tok, err := as.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, "", invalid(op, fmt.Sprintf("Could not fetch token: %v", err))
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil, "", invalid(op, "No user info in token")
	}
	payload, err := as.validate(ctx, raw, as.cfg.ClientID)
	if err != nil {
		return nil, "", invalid(op, fmt.Sprintf("Could not verify id token: %v", err))
	}
	hd, _ := payload.Claims["hd"].(string)
	if hd != as.cfg.AllowedDomain {
		as.log.Warn("sign-in from disallowed domain", "hd", hd)
		return nil, "", domainagg.NewError(domainagg.CodeForbidden, op, fmt.Sprintf("Access denied. Use your @%s account.", as.cfg.AllowedDomain), nil)
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	u := &User{Email: email, Name: name}
	signed, err := as.IssueToken(*u)
	if err != nil {
		return nil, "", domainagg.NewError(domainagg.CodeInternal, op, "could not sign access token", err)
	}
	as.log.Info("user signed in", "email", email)
	return u, signed, nil
}

func (as *authService) IssueToken(u User) (string, error) {
	if as.cfg.JWTSecret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := as.now()
	claims := JWTClaims{
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.cfg.JWTSecret))
}

func (as *authService) ParseToken(tokenString string) (*User, error) {
	const op = "auth.parse"
	if tokenString == "" {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, "Not authenticated", nil)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, "Could not validate credentials", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, "Could not validate credentials", nil)
	}
	return &User{Email: claims.Subject, Name: claims.Name}, nil
}
