package locale_test

import (
	"errors"
	"testing"

	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogs_AreComplete(t *testing.T) {
	cats, err := locale.DefaultCatalogs()
	require.NoError(t, err)
	require.Len(t, cats, 3)

	for _, lang := range []string{"fr", "en", "nl"} {
		t.Run(lang, func(t *testing.T) {
			cat, ok := cats[lang]
			require.True(t, ok)
			assert.NoError(t, cat.Validate())
			assert.Len(t, cat.Entries(), len(locale.Keys()))
		})
	}
}

func TestParseYAML_RejectsUnknownKeys(t *testing.T) {
	_, err := locale.ParseYAML([]byte("language: en\nheader:\n  titel: Typo\n"))
	assert.ErrorIs(t, err, locale.ErrInvalidCatalog)
}

func TestParseYAML_AcceptsJSON(t *testing.T) {
	cat, err := locale.ParseYAML([]byte(`{"language":"en","message":{"greeting":"Hi,"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Hi,", cat.Entries()[locale.KeyMsgGreeting])
}

func TestValidate_ReportsMissingAndUnknown(t *testing.T) {
	cat, err := locale.ParseYAML([]byte(`
language: en
problems:
  meteor:
    label: "Hit by a meteor"
transmissions:
  manual: "Manual"
`))
	require.NoError(t, err)

	err = cat.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, locale.ErrInvalidCatalog)

	var verr *locale.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Unknown, "problems.meteor")
	assert.Contains(t, verr.Missing, locale.KeyMsgGreeting)
	assert.Contains(t, verr.Missing, "transmissions.automatic")
	assert.NotContains(t, verr.Missing, "transmissions.manual")
}
