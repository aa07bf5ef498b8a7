package security

import (
	"testing"
	"time"
)

func TestIssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, expiresAt, err := p.IssueAccess("u-1", "org-1", "SUPER_ADMIN")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiresAt %v is not in the future", expiresAt)
	}

	userID, orgID, orgRole, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "u-1" || orgID != "org-1" || orgRole != "SUPER_ADMIN" {
		t.Fatalf("got (%s, %s, %s)", userID, orgID, orgRole)
	}
}

func TestIssueAccess_EmptyOrgContext(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, _, err := p.IssueAccess("u-1", "", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	userID, orgID, orgRole, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "u-1" || orgID != "" || orgRole != "" {
		t.Fatalf("got (%s, %s, %s)", userID, orgID, orgRole)
	}
}

func TestValidateAccess_Garbage(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, _, _, err := p.ValidateAccess("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateAccess_Expired(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", -1*time.Minute)

	token, _, err := p.IssueAccess("u-1", "org-1", "TEAM_MEMBER")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, _, err := p.ValidateAccess(token); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken for an expired token", err)
	}
}

func TestValidateAccess_WrongIssuerOrAudience(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}

	issuerA := NewTokenProvider(signer, pub, "issuer-a", "aud", 15*time.Minute)
	issuerB := NewTokenProvider(signer, pub, "issuer-b", "aud", 15*time.Minute)
	token, _, err := issuerA.IssueAccess("u-1", "", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, _, err := issuerB.ValidateAccess(token); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken for a foreign issuer", err)
	}

	audB := NewTokenProvider(signer, pub, "issuer-a", "other-aud", 15*time.Minute)
	if _, _, _, err := audB.ValidateAccess(token); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken for a foreign audience", err)
	}
}
