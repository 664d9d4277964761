package principal

import (
	"encoding/base64"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestResolve_BodyWins(t *testing.T) {
	e := NewExtractor("x-ms-client-principal")
	body := []byte(`{"userId":"u-1","userDetails":"Body@Somos.Tech","identityProvider":"aad"}`)
	header := base64.StdEncoding.EncodeToString([]byte(`{"userId":"u-2","userDetails":"header@somos.tech"}`))

	p := e.Resolve(body, header, "")
	if p == nil {
		t.Fatal("expected principal from body")
	}
	if p.UserID != "u-1" {
		t.Errorf("expected body principal, got user id %q", p.UserID)
	}
	if p.Email != "body@somos.tech" {
		t.Errorf("expected lower-cased email, got %q", p.Email)
	}
	if p.IdentityProvider != "aad" {
		t.Errorf("unexpected identity provider %q", p.IdentityProvider)
	}
}

func TestResolve_MalformedBodyFallsThroughToHeader(t *testing.T) {
	e := NewExtractor("x-ms-client-principal")
	header := base64.StdEncoding.EncodeToString([]byte(`{"userId":"u-2","userDetails":"header@somos.tech","claims":[{"type":"name","value":"Header User"}]}`))

	p := e.Resolve([]byte(`{not json`), header, "")
	if p == nil {
		t.Fatal("expected principal from header")
	}
	if p.UserID != "u-2" {
		t.Errorf("expected header principal, got user id %q", p.UserID)
	}
	if len(p.Claims) != 1 || p.Claims[0].Type != "name" {
		t.Errorf("expected claims carried through, got %+v", p.Claims)
	}
}

func TestResolve_EmptyBodyObjectFallsThrough(t *testing.T) {
	e := NewExtractor("x-ms-client-principal")
	header := base64.StdEncoding.EncodeToString([]byte(`{"userDetails":"header@somos.tech"}`))

	p := e.Resolve([]byte(`{"unrelated":true}`), header, "")
	if p == nil {
		t.Fatal("expected principal from header")
	}
	if p.Email != "header@somos.tech" {
		t.Errorf("unexpected email %q", p.Email)
	}
}

func TestResolve_BadBase64Swallowed(t *testing.T) {
	e := NewExtractor("x-ms-client-principal")

	if p := e.Resolve(nil, "%%%not-base64%%%", ""); p != nil {
		t.Fatalf("expected nil principal, got %+v", p)
	}
}

func TestResolve_BearerClaimsFallback(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u-3",
		"email": "Token@Somos.Tech",
		"idp":   "github",
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	e := NewExtractor("x-ms-client-principal")
	p := e.Resolve(nil, "", signed)
	if p == nil {
		t.Fatal("expected principal from bearer claims")
	}
	if p.UserID != "u-3" || p.Email != "token@somos.tech" || p.IdentityProvider != "github" {
		t.Errorf("unexpected principal %+v", p)
	}
}

func TestResolve_NoSources(t *testing.T) {
	e := NewExtractor("")

	if p := e.Resolve(nil, "", ""); p != nil {
		t.Fatalf("expected nil principal, got %+v", p)
	}
}

func TestBearerToken_Parsing(t *testing.T) {
	if got := bearerToken("Bearer abc"); got != "abc" {
		t.Errorf("expected token, got %q", got)
	}
	if got := bearerToken("Basic abc"); got != "" {
		t.Errorf("expected empty token for basic scheme, got %q", got)
	}
	if got := bearerToken(""); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
}
