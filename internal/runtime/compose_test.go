package runtime_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_StandardBranch(t *testing.T) {
	a := domain.Answers{
		Problem:         domain.ProblemBattery,
		VehicleCategory: domain.VehicleSedan,
		Transmission:    domain.TransmissionManual,
		FourWheelDrive:  ptr(false),
		Location:        domain.Location{Kind: domain.LocationManual, Address: "Rue Neuve 10, Brussels"},
	}

	want := "Hello,\n\n" +
		"I would like to get a quote for a service.\n\n" +
		"Problem: Dead battery\n" +
		"Vehicle: Sedan / SUV\n" +
		"Transmission: Manual, 2WD\n" +
		"Location: Rue Neuve 10, Brussels\n" +
		"\n" +
		"Please provide me with the price and service time."
	assert.Equal(t, want, runtime.Compose(a, english(t)))
}

func TestCompose_TowingWithGPSAndRoute(t *testing.T) {
	a := domain.Answers{
		Problem:         domain.ProblemTowing,
		VehicleCategory: domain.VehicleCity,
		Transmission:    domain.TransmissionAutomatic,
		FourWheelDrive:  ptr(true),
		Location:        domain.Location{Kind: domain.LocationGPS, Coordinates: &domain.Coordinates{Lat: 48.85, Lng: 2.35}},
		Destination:     &domain.Destination{Address: "Garage X", Distance: "12 km", Duration: "18 min"},
	}

	lines := strings.Split(runtime.Compose(a, english(t)), "\n")
	assert.Contains(t, lines, "Transmission: Automatic, 4WD")
	assert.Contains(t, lines, "Location: https://maps.google.com/?q=48.85,2.35")
	assert.Contains(t, lines, "Destination: Garage X")
	assert.Contains(t, lines, "Estimated distance: 12 km (~18 min)")
}

func TestCompose_UnknownDestinationHasNoDistance(t *testing.T) {
	a := domain.Answers{
		Problem:         domain.ProblemTowing,
		VehicleCategory: domain.VehicleVan,
		Transmission:    domain.TransmissionManual,
		FourWheelDrive:  ptr(false),
		Location:        domain.Location{Kind: domain.LocationManual, Address: "Avenue Louise 1"},
		Destination:     &domain.Destination{Unknown: true},
	}

	msg := runtime.Compose(a, english(t))
	assert.Contains(t, msg, "Destination: To be determined\n")
	assert.NotContains(t, msg, "Estimated distance")
}

func TestCompose_Wreck(t *testing.T) {
	a := domain.Answers{
		Problem:    domain.ProblemWreck,
		WreckBrand: "Peugeot",
		WreckModel: "206",
		WreckYear:  "2004",
		Location:   domain.Location{Kind: domain.LocationManual, Address: "Rue Haute 5"},
	}

	msg := runtime.Compose(a, english(t))
	assert.Contains(t, msg, "Vehicle: Peugeot 206 (2004)\n")
	assert.NotContains(t, msg, "Transmission:")
	assert.NotContains(t, msg, "Destination:")
}

func TestCompose_OmitsUnanswered(t *testing.T) {
	msg := runtime.Compose(domain.Answers{Problem: domain.ProblemLocked}, english(t))
	assert.Contains(t, msg, "Problem: Keys locked inside\n")
	assert.NotContains(t, msg, "Vehicle:")
	assert.NotContains(t, msg, "Location:")
}

func TestCompose_IsPure(t *testing.T) {
	a := domain.Answers{
		Problem:         domain.ProblemFlat,
		VehicleCategory: domain.VehiclePremium,
		WheelPosition:   domain.WheelFront,
		Transmission:    domain.TransmissionAutomatic,
		FourWheelDrive:  ptr(true),
		Location:        domain.Location{Kind: domain.LocationManual, Address: "Place Flagey"},
	}
	before := a.Clone()
	tr := english(t)

	first := runtime.Compose(a, tr)
	assert.Equal(t, first, runtime.Compose(a, tr))
	assert.Equal(t, before, a)
}

func TestCompose_FollowsLanguage(t *testing.T) {
	b := bundle(t)
	a := domain.Answers{Problem: domain.ProblemBattery}

	fr := runtime.Compose(a, b.Translator("fr"))
	en := runtime.Compose(a, b.Translator("en"))
	assert.NotEqual(t, fr, en)
	assert.True(t, strings.HasPrefix(en, "Hello,"))
}

func TestLink_For(t *testing.T) {
	link := runtime.Link{Phone: "+32 479 89 00 89"}
	msg := "Hello,\n\nProblem: Flat tire & more"

	got := link.For(msg)
	require.True(t, strings.HasPrefix(got, "https://wa.me/32479890089?text="))
	assert.NotContains(t, got, "+")
	assert.Contains(t, got, "Hello%2C%0A%0AProblem%3A%20Flat%20tire%20%26%20more")

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, msg, u.Query().Get("text"))
}

func TestLink_EncodesLikeURIComponent(t *testing.T) {
	got := runtime.Link{Phone: "1"}.For("Hi! (it's *urgent*) 50% + ~ok_")
	assert.Equal(t, "https://wa.me/1?text=Hi!%20(it's%20*urgent*)%2050%25%20%2B%20~ok_", got)
}

func TestLink_CustomBase(t *testing.T) {
	got := runtime.Link{Base: "https://example.test/send", Phone: "123"}.For("a b")
	assert.Equal(t, "https://example.test/send/123?text=a%20b", got)
}
