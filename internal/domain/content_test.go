package domain

import "testing"

func TestChannelAppliesTo(t *testing.T) {
	tests := []struct {
		name  string
		kinds []string
		kind  string
		want  bool
	}{
		{"empty kinds applies to everything", nil, "article", true},
		{"listed kind applies", []string{"article", "page"}, "page", true},
		{"unlisted kind does not apply", []string{"article"}, "event", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ch := Channel{ID: "subscribe", Kinds: tc.kinds}
			if got := ch.AppliesTo(tc.kind); got != tc.want {
				t.Fatalf("AppliesTo(%q) = %v, want %v", tc.kind, got, tc.want)
			}
		})
	}
}

func TestAccountUsable(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		want    bool
	}{
		{"active with email", Account{ID: 1, Email: "a@example.com", Active: true}, true},
		{"inactive", Account{ID: 2, Email: "b@example.com", Active: false}, false},
		{"missing email", Account{ID: 3, Active: true}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.account.Usable(); got != tc.want {
				t.Fatalf("Usable() = %v, want %v", got, tc.want)
			}
		})
	}
}
