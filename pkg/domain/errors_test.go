package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yannickbattail/scadwrap/pkg/domain"
)

func TestOutputError(t *testing.T) {
	err := fmt.Errorf("image: %w", domain.MissingOutput("summary file", "out/a.summary.json"))

	assert.ErrorIs(t, err, domain.ErrMissingOutput)
	assert.NotErrorIs(t, err, domain.ErrMalformedOutput)
	assert.Contains(t, err.Error(), "out/a.summary.json")

	var oe *domain.OutputError
	assert.True(t, errors.As(err, &oe))
	assert.Equal(t, "out/a.summary.json", oe.Path)

	cause := errors.New("unexpected EOF")
	err = domain.MalformedOutput("parameter definition", "a.param.json", cause)
	assert.ErrorIs(t, err, domain.ErrMalformedOutput)
	assert.ErrorIs(t, err, cause)
}
