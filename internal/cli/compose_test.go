package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/helpcar/quotechat/internal/cli"
	"github.com/helpcar/quotechat/internal/testutils"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeOptions_Answers(t *testing.T) {
	t.Run("towing without destination is unknown", func(t *testing.T) {
		a, err := cli.ComposeOptions{Problem: "towing", Vehicle: "sedan", Transmission: "manual", FourWheelDrive: "no", Address: " Gent "}.Answers()
		require.NoError(t, err)
		require.NotNil(t, a.Destination)
		assert.True(t, a.Destination.Unknown)
		assert.Equal(t, "Gent", a.Location.Address)
		assert.True(t, a.Complete())
	})

	t.Run("coordinates win over address", func(t *testing.T) {
		a, err := cli.ComposeOptions{Problem: "battery", Address: "x", Position: &domain.Coordinates{Lat: 50.1, Lng: 4.2}}.Answers()
		require.NoError(t, err)
		assert.Equal(t, domain.LocationGPS, a.Location.Kind)
	})

	bad := []cli.ComposeOptions{
		{Problem: "meteor"},
		{Problem: "battery", Vehicle: "spaceship"},
		{Problem: "battery", FourWheelDrive: "maybe"},
		{Problem: "battery", Position: &domain.Coordinates{Lat: 91}},
	}
	for _, o := range bad {
		_, err := o.Answers()
		assert.Error(t, err, "%+v", o)
	}
}

func TestCompose_PrintsMessageAndLink(t *testing.T) {
	cfg := loadConfig(t)
	var out bytes.Buffer
	err := cli.Compose(context.Background(), cfg, cli.ComposeOptions{
		Language: "en", Problem: "battery", Vehicle: "sedan", Transmission: "automatic",
		FourWheelDrive: "yes", Address: "Rue Neuve 1, Bruxelles",
	}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Contains(t, out.String(), "Problem: Dead battery")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "https://wa.me/32479890089?text="))
}

func TestCompose_Incomplete(t *testing.T) {
	cfg := loadConfig(t)
	var out bytes.Buffer
	err := cli.Compose(context.Background(), cfg, cli.ComposeOptions{Problem: "wreck", Brand: "Peugeot"}, &out)
	assert.ErrorIs(t, err, cli.ErrIncomplete)
	assert.Contains(t, out.String(), "https://wa.me/")
}

func TestLocales(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"de.json": `{"language": "de", "message": {"greeting": "Hallo,"}}`,
	})

	var out bytes.Buffer
	require.NoError(t, cli.ListLocales(context.Background(), dir, &out))
	assert.Contains(t, strings.Fields(out.String()), "de")
	assert.Contains(t, strings.Fields(out.String()), "fr")

	out.Reset()
	require.NoError(t, cli.ValidateLocales(context.Background(), dir, &out))
	assert.Contains(t, out.String(), "de: ok,")

	testutils.WriteFiles(t, dir, map[string]string{
		"nl.json": `{"language": "nl", "problems": {"meteor": {"label": "Meteoor"}}}`,
	})
	out.Reset()
	err := cli.ValidateLocales(context.Background(), dir, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "problems.meteor")
}
