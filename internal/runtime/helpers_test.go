package runtime_test

import (
	"testing"

	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/stretchr/testify/require"
)

func english(t *testing.T) *locale.Translator {
	t.Helper()
	return bundle(t).Translator("en")
}

func ptr[T any](v T) *T { return &v }

func bundle(t *testing.T) *locale.Bundle {
	t.Helper()
	b, err := locale.NewBundle()
	require.NoError(t, err)
	return b
}
