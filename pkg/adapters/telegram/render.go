package telegram

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/helpcar/quotechat/internal/runtime"
	"github.com/helpcar/quotechat/pkg/domain"
)

// Outgoing is one chat message to send.
type Outgoing struct {
	Text        string
	ReplyMarkup models.ReplyMarkup
}

// Transcript remembers what a chat has been shown so that each new view only
// produces the messages the chat has not seen yet.
type Transcript struct {
	sent     []string
	prompted string
}

// Next returns the messages that bring the chat up to date with v. Bot turns are
// compared by position: the common prefix with what was already sent is skipped.
// The affordance is attached to the last message once the step is revealed.
func (t *Transcript) Next(v domain.ConversationView) []Outgoing {
	if v.Status == domain.StatusClosed {
		return nil
	}
	texts := v.BotTexts()
	n := commonPrefix(t.sent, texts)
	var out []Outgoing
	for _, text := range texts[n:] {
		out = append(out, Outgoing{Text: text})
	}
	t.sent = slices.Clone(texts)

	if v.Pending || v.Affordance == nil {
		return out
	}
	sig := signature(v)
	if sig == t.prompted {
		return out
	}
	t.prompted = sig

	if v.Affordance.Kind == domain.AffordanceSummary && v.Affordance.Summary != nil {
		return append(out, Outgoing{
			Text:        SummaryText(v.Affordance.Summary),
			ReplyMarkup: Keyboard(v.Affordance),
		})
	}
	if len(out) == 0 {
		if len(texts) == 0 {
			return nil
		}
		out = append(out, Outgoing{Text: texts[len(texts)-1]})
	}
	last := &out[len(out)-1]
	last.Text = decorate(last.Text, v.Affordance)
	last.ReplyMarkup = Keyboard(v.Affordance)
	return out
}

// Reprompt makes the next view resend the current prompt with its keyboard.
func (t *Transcript) Reprompt() {
	t.prompted = ""
}

func signature(v domain.ConversationView) string {
	return fmt.Sprintf("%s/%s/%d", v.Step, v.Affordance.Kind, len(v.Affordance.Options))
}

func commonPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func decorate(text string, a *domain.Affordance) string {
	switch {
	case a.Privacy != "":
		return text + "\n\n" + a.Privacy
	case a.Hint != "":
		return text + "\n\n" + a.Hint
	}
	return text
}

// Keyboard maps an affordance to a Telegram keyboard. The location chooser uses a
// reply keyboard so the GPS button can request the chat location; other choices are
// inline buttons whose callback data is the option value.
func Keyboard(a *domain.Affordance) models.ReplyMarkup {
	if a == nil {
		return nil
	}
	switch a.Kind {
	case domain.AffordanceOptions:
		rows := make([][]models.InlineKeyboardButton, 0, len(a.Options))
		for _, o := range a.Options {
			rows = append(rows, []models.InlineKeyboardButton{button(o)})
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	case domain.AffordanceChoice, domain.AffordanceAddressEntry, domain.AffordanceDestinationChooser:
		row := make([]models.InlineKeyboardButton, 0, len(a.Options))
		for _, o := range a.Options {
			row = append(row, button(o))
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{row}}
	case domain.AffordanceLocationChooser:
		return &models.ReplyKeyboardMarkup{
			Keyboard: [][]models.KeyboardButton{
				{{Text: a.GPSLabel, RequestLocation: true}},
				{{Text: a.AddressLabel}},
			},
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		}
	case domain.AffordanceText:
		return &models.ForceReply{ForceReply: true, InputFieldPlaceholder: a.Placeholder}
	case domain.AffordanceSummary:
		if a.Summary == nil || a.Summary.Link == "" {
			return nil
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: a.Summary.CTA, URL: a.Summary.Link}},
		}}
	}
	return nil
}

func button(o domain.Option) models.InlineKeyboardButton {
	label := o.Label
	if o.Hint != "" {
		label += " (" + o.Hint + ")"
	}
	return models.InlineKeyboardButton{Text: label, CallbackData: o.Value}
}

// ResolveInput maps a typed text to the option value it names. Reply keyboard buttons
// arrive as plain text carrying their label. Unmatched text is returned unchanged.
func ResolveInput(a *domain.Affordance, text string) string {
	text = strings.TrimSpace(text)
	if a == nil {
		return text
	}
	for _, o := range a.Options {
		if strings.EqualFold(o.Label, text) {
			return o.Value
		}
	}
	switch {
	case a.GPSLabel != "" && strings.EqualFold(a.GPSLabel, text):
		return runtime.InputUseGPS
	case a.AddressLabel != "" && strings.EqualFold(a.AddressLabel, text):
		return runtime.InputEnterAddress
	}
	return text
}

// SummaryText renders the summary card as plain text.
func SummaryText(s *domain.Summary) string {
	var b strings.Builder
	b.WriteString(s.Title)
	if s.Company != "" {
		b.WriteString("\n" + s.Company)
	}
	b.WriteString("\n")
	for _, r := range s.Rows {
		fmt.Fprintf(&b, "\n%s: %s", r.Label, r.Value)
	}
	for _, r := range s.Metrics {
		fmt.Fprintf(&b, "\n%s: %s", r.Label, r.Value)
	}
	if s.TrustTitle != "" {
		b.WriteString("\n\n" + s.TrustTitle)
		if s.TrustMessage != "" {
			b.WriteString("\n" + s.TrustMessage)
		}
	}
	return b.String()
}
