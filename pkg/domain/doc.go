/*
Package domain contains the core models of the quote wizard.

It defines the answers a visitor can give, the enumerated steps of each branch and the
view description handed to front ends. The package is kept pure: no I/O, no timers and no
third-party imports, so every other layer can depend on it.

# Key Entities

  - Problem: the declared incident; it selects the Branch and whether a destination is needed.
  - AnswerStore: the mutable record of one session, guarded by invariant-checking mutators.
  - Step: an explicit enumerated position; Ordinal gives its place in the branch (1.5, 4b...).
  - Answer: a typed visitor answer submitted for the current step.
  - ConversationView: ordered turns plus the active affordance, derived from a SessionRecord.
*/
package domain
