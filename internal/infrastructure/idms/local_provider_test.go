package idms

import (
	"context"
	"testing"
	"time"
)

func TestLocalProvider_ExchangeAndValidate(t *testing.T) {
	p := NewLocalProvider("secret", "labeler", time.Minute)

	grant, err := p.Exchange(context.Background(), "alice")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if grant.Username != "alice" || grant.Role != "labeler" {
		t.Fatalf("grant = %+v", grant)
	}
	if grant.Token == "" {
		t.Fatalf("expected a signed token")
	}

	valid, err := p.Validate(context.Background(), grant.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !valid {
		t.Fatalf("freshly issued token should validate")
	}
}

func TestLocalProvider_RejectsEmptyCode(t *testing.T) {
	p := NewLocalProvider("secret", "labeler", time.Minute)

	if _, err := p.Exchange(context.Background(), ""); err == nil {
		t.Fatalf("expected an error for an empty code")
	}
}

func TestLocalProvider_RejectsForeignToken(t *testing.T) {
	issuer := NewLocalProvider("secret-a", "labeler", time.Minute)
	verifier := NewLocalProvider("secret-b", "labeler", time.Minute)

	grant, err := issuer.Exchange(context.Background(), "alice")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	valid, err := verifier.Validate(context.Background(), grant.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if valid {
		t.Fatalf("token signed with another secret must not validate")
	}
}

func TestLocalProvider_RejectsExpiredToken(t *testing.T) {
	p := NewLocalProvider("secret", "labeler", -time.Minute)

	grant, err := p.Exchange(context.Background(), "alice")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	valid, err := p.Validate(context.Background(), grant.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if valid {
		t.Fatalf("expired token must not validate")
	}
}
