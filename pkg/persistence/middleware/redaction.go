package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/yannickbattail/scadwrap/pkg/domain"
	"github.com/yannickbattail/scadwrap/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.ResultStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks matches of the
// patterns in the captured tool output and error text before they are stored,
// e.g. home directories or tokens echoed by the tool.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: redaction pattern %q: %v", domain.ErrInvalidInput, p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ResultStore) ports.ResultStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, rec *domain.Record) error {
	// Copy to avoid side effects on the record held by the caller.
	cloned := *rec
	cloned.Output = m.mask(rec.Output)
	cloned.Error = m.mask(rec.Error)

	return m.next.Save(ctx, &cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, id string) (*domain.Record, error) {
	return m.next.Load(ctx, id)
}

func (m *redactionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}
