package auth

import (
	"testing"
)

// testParams keep argon2 cheap so the suite stays fast.
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func TestHasher_Deterministic(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)
	salt, err := h.NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}

	first := h.Hash("hunter22", salt)
	second := h.Hash("hunter22", salt)

	if first == "" {
		t.Fatal("Hash should not be empty for a non-empty secret")
	}
	if first != second {
		t.Errorf("Hash should be deterministic: %s != %s", first, second)
	}
}

func TestHasher_SaltChangesDigest(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)

	a, err := h.Derive("same-password")
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	b, err := h.Derive("same-password")
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if a.Salt == b.Salt {
		t.Error("Derive should produce a fresh salt each call")
	}
	if a.Hash == b.Hash {
		t.Error("Same secret under different salts should produce different digests")
	}
}

func TestHasher_EmptyInputsYieldSentinel(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)

	tests := []struct {
		name   string
		secret string
		salt   string
	}{
		{"empty secret", "", "c2FsdA"},
		{"empty salt", "secret", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := h.Hash(tt.secret, tt.salt); got != "" {
				t.Errorf("Hash(%q, %q) = %q, want empty", tt.secret, tt.salt, got)
			}
		})
	}
}

func TestHasher_Verify(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)
	cred, err := h.Derive("correct horse")
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if !h.Verify("correct horse", cred.Salt, cred.Hash) {
		t.Error("Correct secret should verify")
	}
	if h.Verify("wrong horse", cred.Salt, cred.Hash) {
		t.Error("Wrong secret should not verify")
	}
	if h.Verify("", cred.Salt, "") {
		t.Error("Empty secret against empty digest must not verify")
	}
}

func TestHasher_AnswerNormalization(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)
	cred, err := h.DeriveAnswer("  Fluffy ")
	if err != nil {
		t.Fatalf("DeriveAnswer failed: %v", err)
	}

	tests := []struct {
		answer string
		want   bool
	}{
		{"fluffy", true},
		{"FLUFFY", true},
		{"\tfluffy\n", true},
		{"fluff", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := h.VerifyAnswer(tt.answer, cred.Salt, cred.Hash); got != tt.want {
			t.Errorf("VerifyAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestNewHasher_Defaults(t *testing.T) {
	t.Parallel()

	h := NewHasher(Params{})
	if h.params != DefaultParams {
		t.Errorf("NewHasher(Params{}) params = %+v, want %+v", h.params, DefaultParams)
	}
}
