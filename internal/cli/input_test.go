package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

func TestParameterFlags_Input(t *testing.T) {
	t.Run("Key value list", func(t *testing.T) {
		in, err := ParameterFlags{Params: []string{"size=20", "label=a=b"}}.Input()
		require.NoError(t, err)
		assert.Equal(t, domain.InputList, in.Kind())
		assert.Equal(t, []domain.ParameterKV{{Parameter: "size", Value: "20"}, {Parameter: "label", Value: "a=b"}}, in.List())
	})

	t.Run("Named group", func(t *testing.T) {
		in, err := ParameterFlags{Params: []string{"size=5"}, Group: "small"}.Input()
		require.NoError(t, err)
		assert.Equal(t, domain.InputSet, in.Kind())
		assert.Equal(t, "small", in.Group())
		g, ok := in.Set().Group("small")
		require.True(t, ok)
		assert.Equal(t, "5", g["size"])
	})

	t.Run("Parameter file", func(t *testing.T) {
		in, err := ParameterFlags{File: "p.json", Group: "all_20"}.Input()
		require.NoError(t, err)
		assert.Equal(t, domain.InputFile, in.Kind())
		assert.Equal(t, "p.json", in.File())
	})

	t.Run("Errors", func(t *testing.T) {
		for _, f := range []ParameterFlags{
			{Params: []string{"size"}},
			{Params: []string{"=1"}},
			{File: "p.json"},
			{File: "p.json", Group: "g", Params: []string{"a=1"}},
		} {
			_, err := f.Input()
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", f)
		}
	})
}
