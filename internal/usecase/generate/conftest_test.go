package generate

import (
	"context"

	dompost "github.com/postforge/postforge/internal/domain/post"
	domusage "github.com/postforge/postforge/internal/domain/usage"
)

type mockGenerator struct {
	texts []string // returned in sequence; last repeats
	err   error
	calls int
}

func (m *mockGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	idx := m.calls - 1
	if idx >= len(m.texts) {
		idx = len(m.texts) - 1
	}
	return m.texts[idx], nil
}

type mockGuard struct {
	decision domusage.Decision
	err      error
	calls    []int64
}

func (m *mockGuard) CheckAndConsume(_ context.Context, _ string, units int64) (domusage.Decision, error) {
	m.calls = append(m.calls, units)
	return m.decision, m.err
}

type mockPostWriter struct {
	saved []dompost.Post
	err   error
}

func (m *mockPostWriter) Save(_ context.Context, p *dompost.Post) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *p)
	return nil
}
