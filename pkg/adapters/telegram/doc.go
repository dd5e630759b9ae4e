// Package telegram runs the quote wizard as a Telegram bot. Each chat owns one session;
// paced reveals are pushed to the chat as they fire, options become inline buttons and
// the location step asks the client to share its position.
package telegram
