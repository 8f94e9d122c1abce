package mailer

import (
	"context"
	"sync"
)

// SentMail records one delivery attempt made through the MockMailer.
type SentMail struct {
	To       string
	Locale   string
	Subject  string
	BodyHTML string
}

// MockMailer records every send for assertions. FailFor marks addresses
// whose sends report delivered=false (the per-recipient failure path).
type MockMailer struct {
	mu      sync.Mutex
	sent    []SentMail
	FailFor map[string]bool
}

func NewMockMailer() *MockMailer {
	return &MockMailer{FailFor: make(map[string]bool)}
}

func (m *MockMailer) Send(_ context.Context, to, locale, subject, bodyHTML string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{To: to, Locale: locale, Subject: subject, BodyHTML: bodyHTML})
	return !m.FailFor[to]
}

// Sent returns all recorded attempts, delivered or not.
func (m *MockMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

var _ Mailer = (*MockMailer)(nil)
