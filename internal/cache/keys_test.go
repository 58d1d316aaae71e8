package cache

import (
	"strings"
	"testing"
)

func TestHashIP(t *testing.T) {
	t.Parallel()

	if hashIP("192.168.1.100") != hashIP("192.168.1.100") {
		t.Error("same IP should produce same hash")
	}

	for _, ip := range []string{"127.0.0.1", "::1", "2001:0db8:85a3:0000:0000:8a2e:0370:7334", ""} {
		if got := len(hashIP(ip)); got != 16 {
			t.Errorf("hashIP(%q) length = %d, want 16", ip, got)
		}
	}

	pairs := [][2]string{
		{"10.0.0.1", "10.0.0.2"},
		{"127.0.0.1", "::1"},
	}
	for _, p := range pairs {
		if hashIP(p[0]) == hashIP(p[1]) {
			t.Errorf("%q and %q hashed to the same value", p[0], p[1])
		}
	}
}

func TestBucketKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scope  string
		ip     string
		prefix string
	}{
		{"signin", "signin", "10.0.0.1", "freshplate:ratelimit:signin:"},
		{"recovery", "recovery", "10.0.0.1", "freshplate:ratelimit:recovery:"},
		{"signup", "signup", "::1", "freshplate:ratelimit:signup:"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key := bucketKey(tt.scope, tt.ip)
			if !strings.HasPrefix(key, tt.prefix) {
				t.Errorf("bucketKey(%q, %q) = %q, want prefix %q", tt.scope, tt.ip, key, tt.prefix)
			}
			if strings.Contains(key, tt.ip) {
				t.Errorf("raw IP leaked into key %q", key)
			}
		})
	}

	if bucketKey("signin", "10.0.0.1") == bucketKey("recovery", "10.0.0.1") {
		t.Error("scopes must not share a bucket")
	}
}
