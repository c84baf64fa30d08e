/*
Package guide is the SocialSphere help assistant: a small, deterministic dialogue
state machine that walks a user from a main menu to a help domain and on to a
canned answer.

The dialogue core lives in pkg/dialogue and is pure. This package wires it to a
session store so hosts (CLI, HTTP, MCP) can serve many concurrent conversations,
each owned by exactly one session.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/socialsphere/guide"
	)

	func main() {
		eng, err := guide.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		fmt.Println(eng.Menu())

		for _, msg := range []string{"instagram", "connect", "menu"} {
			reply, err := eng.Respond(ctx, "session-123", msg)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(reply.Text)
		}
	}

# Dialogue

  - "menu" or "main menu" always returns to the main menu.
  - At the menu, the first domain key contained in the input opens that domain.
  - Inside a domain, the first answer key contained in the input returns its answer.
  - After an answer, only "menu" moves the conversation on.
*/
package guide
