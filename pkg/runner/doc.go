/*
Package runner drives a terminal conversation with the guide.

It reads one line at a time, sanitizes it, hands it to the engine and prints the
reply. The menu is shown when the session starts; "exit", "quit" or end of input
ends the loop.

# Usage

	eng, _ := guide.New()
	r := runner.New(eng,
		runner.WithSessionID("local"),
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
