/*
Package domain contains the core models of the SocialSphere guide.

It defines the help content (Domains and their Answers, grouped in a Table), the
per-conversation dialogue state (Conversation and its Step), and the lifecycle
events emitted after every turn. The package is pure: no I/O, no persistence, no
globals.

# Key Entities

  - Table: ordered list of help domains. Order is the tie-break for matching.
  - Domain: a topic with an intro, a clarifying prompt and ordered answer keys.
  - Conversation: the state of one user's dialogue (Step + selected domain).
  - TurnEvent: what happened during a single respond call.
*/
package domain
