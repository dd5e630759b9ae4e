/*
Package quotechat is a conversational lead-capture wizard for roadside assistance.

A visitor answers a short, branching sequence of questions (problem, vehicle,
transmission, location, and a drop-off point when towing). The answers are composed
into a ready-to-send quote request and handed off as a messaging deep link.

# Architecture

The wizard is a small state machine over explicit steps. The flow depends on the
declared problem:

  - standard: problem, vehicle, transmission, four-wheel drive, location, final
  - flat tire: the same, with the wheel position asked right after the vehicle
  - towing: standard plus a destination after the location
  - wreck: brand, model and year as free text instead of the vehicle questions

Sessions pace their replies with short "typing" delays driven by an injectable clock;
closing a session cancels every pending reveal.

Front ends (terminal, HTTP/SSE, MCP, Telegram) drive the same session.Manager and draw
the domain.ConversationView it returns.

# Usage

	engine, err := quotechat.New(
		quotechat.WithPhone("32479890089"),
		quotechat.WithLocalesDir("./locales"),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	sess, _ := engine.Sessions.Create(ctx, "en")
	_ = sess.Dispatch(ctx, "battery")
*/
package quotechat
