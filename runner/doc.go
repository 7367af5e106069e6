// Package runner drives a compiled conversational graph from a line based
// input stream.
//
// Each turn reads one line, appends it as a user message and streams the
// graph, printing the messages every node produced. Empty input is retried
// a bounded number of times before a fallback prompt is used; a quit word
// ends the loop. End of input runs the fallback prompt once and stops.
//
//	r := runner.New(g, func(o *runner.Options) {
//		o.Profile = termenv.ColorProfile()
//	})
//	err := r.Run(ctx, os.Stdin, os.Stdout)
package runner
