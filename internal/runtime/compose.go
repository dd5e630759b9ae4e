package runtime

import (
	"net/url"
	"strings"

	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/locale"
	"github.com/helpcar/quotechat/pkg/ports"
)

// MapsLinkBase prefixes GPS coordinates in the composed message.
const MapsLinkBase = "https://maps.google.com/?q="

// DefaultLinkBase is the messaging service deep-link base.
const DefaultLinkBase = "https://wa.me/"

// DefaultPhone receives the quote requests when no number is configured.
const DefaultPhone = "32479890089"

// Compose serialises the answers into the outgoing message. It is a pure function of its
// inputs: every literal comes from tr. Lines for unanswered questions are omitted.
func Compose(a domain.Answers, tr ports.Translator) string {
	t := tr.Translate
	var b strings.Builder

	b.WriteString(t(locale.KeyMsgGreeting))
	b.WriteString("\n\n")
	b.WriteString(t(locale.KeyMsgIntro))
	b.WriteString("\n\n")

	line := func(labelKey, value string) {
		b.WriteString(t(labelKey))
		b.WriteString(" ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	if a.Problem != "" {
		line(locale.KeyMsgProblem, t(locale.ProblemLabelKey(a.Problem)))
	}

	if a.Problem == domain.ProblemWreck {
		if a.WreckBrand != "" {
			line(locale.KeyMsgVehicle, WreckVehicle(a))
		}
	} else {
		if a.VehicleCategory != "" {
			line(locale.KeyMsgVehicle, t(locale.VehicleLabelKey(a.VehicleCategory)))
		}
		if a.Transmission != "" && a.FourWheelDrive != nil {
			line(locale.KeyMsgTransmission, TransmissionSummary(a, tr))
		}
	}

	switch a.Location.Kind {
	case domain.LocationGPS:
		if a.Location.Coordinates != nil {
			line(locale.KeyMsgLocation, MapsLinkBase+a.Location.Coordinates.String())
		}
	case domain.LocationManual:
		line(locale.KeyMsgLocation, a.Location.Address)
	}

	if a.Problem.NeedsDestination() && a.Destination != nil {
		d := a.Destination
		if d.Unknown {
			line(locale.KeyMsgDestination, t(locale.KeyDestinationUnknown))
		} else {
			line(locale.KeyMsgDestination, d.Address)
			if d.HasMetrics() {
				line(locale.KeyMsgDistance, routeText(*d))
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(t(locale.KeyMsgClosing))
	return b.String()
}

// WreckVehicle renders "brand model (year)".
func WreckVehicle(a domain.Answers) string {
	return a.WreckBrand + " " + a.WreckModel + " (" + a.WreckYear + ")"
}

// TransmissionSummary renders "Manual, 2WD".
func TransmissionSummary(a domain.Answers, tr ports.Translator) string {
	drive := false
	if a.FourWheelDrive != nil {
		drive = *a.FourWheelDrive
	}
	return tr.Translate(locale.TransmissionKey(a.Transmission)) + ", " + tr.Translate(locale.DriveLabelKey(drive))
}

func routeText(d domain.Destination) string {
	if d.Duration == "" {
		return d.Distance
	}
	return d.Distance + " (~" + d.Duration + ")"
}

// Link builds the messaging deep link for a phone number.
type Link struct {
	Base  string
	Phone string
}

// uriComponent undoes the query escaping of the characters a browser's
// encodeURIComponent leaves alone, and encodes spaces as %20.
var uriComponent = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// For returns <base><phone>?text=<percent-encoded message>, encoded like the web
// widget's links.
func (l Link) For(message string) string {
	base := l.Base
	if base == "" {
		base = DefaultLinkBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + digits(l.Phone) + "?text=" + uriComponent.Replace(url.QueryEscape(message))
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
