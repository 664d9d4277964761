package principal

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/somos-tech/profile-service/internal/domain"
)

var errNoPrincipal = errors.New("no principal in source")

// clientPrincipal mirrors the JSON envelope the identity provider emits,
// either inline in a request body or base64-encoded in a header.
type clientPrincipal struct {
	UserID           string         `json:"userId"`
	UserDetails      string         `json:"userDetails"`
	Email            string         `json:"email"`
	IdentityProvider string         `json:"identityProvider"`
	Claims           []domain.Claim `json:"claims"`
}

// Extractor resolves a Principal from an ordered list of request sources.
// The first source that yields a principal wins; parse failures at any
// step are swallowed and resolution moves on.
type Extractor struct {
	headerName string
}

// NewExtractor builds an extractor reading the given client-principal header.
func NewExtractor(headerName string) *Extractor {
	if headerName == "" {
		headerName = "x-ms-client-principal"
	}
	return &Extractor{headerName: headerName}
}

// FromRequest resolves the caller principal from the request, or nil when
// no source yields one.
func (e *Extractor) FromRequest(c *fiber.Ctx) *domain.Principal {
	return e.Resolve(c.Body(), c.Get(e.headerName), bearerToken(c.Get(fiber.HeaderAuthorization)))
}

// Resolve runs the extraction chain over raw source material: the request
// body, the encoded principal header, and a bearer token already validated
// upstream. Claims in the token are parsed without signature verification.
func (e *Extractor) Resolve(body []byte, encodedHeader, bearer string) *domain.Principal {
	sources := []func() (*domain.Principal, error){
		func() (*domain.Principal, error) { return fromBody(body) },
		func() (*domain.Principal, error) { return fromHeader(encodedHeader) },
		func() (*domain.Principal, error) { return fromBearerClaims(bearer) },
	}
	for _, source := range sources {
		if p, err := source(); err == nil && p != nil {
			return p
		}
	}
	return nil
}

func fromBody(body []byte) (*domain.Principal, error) {
	if len(body) == 0 {
		return nil, errNoPrincipal
	}
	var envelope clientPrincipal
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.toPrincipal()
}

func fromHeader(encoded string) (*domain.Principal, error) {
	if encoded == "" {
		return nil, errNoPrincipal
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var envelope clientPrincipal
	if err := json.Unmarshal(decoded, &envelope); err != nil {
		return nil, err
	}
	return envelope.toPrincipal()
}

func fromBearerClaims(token string) (*domain.Principal, error) {
	if token == "" {
		return nil, errNoPrincipal
	}

	claims := jwt.MapClaims{}
	// Signature verification happens at the upstream gateway; only the
	// claim payload is needed here.
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	p := &domain.Principal{}
	if sub, ok := claims["sub"].(string); ok {
		p.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		p.Email = strings.ToLower(email)
	} else if preferred, ok := claims["preferred_username"].(string); ok {
		p.Email = strings.ToLower(preferred)
	}
	if idp, ok := claims["idp"].(string); ok {
		p.IdentityProvider = idp
	}
	if p.UserID == "" && p.Email == "" {
		return nil, errNoPrincipal
	}
	return p, nil
}

func (cp clientPrincipal) toPrincipal() (*domain.Principal, error) {
	if cp.UserID == "" && cp.UserDetails == "" && cp.Email == "" {
		return nil, errNoPrincipal
	}
	email := cp.Email
	if email == "" {
		email = cp.UserDetails
	}
	return &domain.Principal{
		UserID:           cp.UserID,
		Email:            strings.ToLower(email),
		IdentityProvider: cp.IdentityProvider,
		Claims:           cp.Claims,
	}, nil
}

func bearerToken(authorization string) string {
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
