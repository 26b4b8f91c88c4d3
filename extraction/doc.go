// Package extraction coerces an unreliable chat model reply into a
// validated intent/entity summary.
//
// # State Machine
//
// Each Extract call moves through
//
//	SENT -> PARSE_DIRECT -> PARSE_REPAIRED -> RETRY -> DONE | FALLBACK
//
// The raw reply is parsed as JSON first. If that fails, ScanObject cuts the
// span from the first '{' to the last '}' and that span is parsed, with a
// light repair pass (missing key quotes, trailing commas) as a last resort.
// A parsed value must be an object whose intent names one of the offered
// labels; otherwise the attempt counts as invalid and the next one starts
// after the RetryPolicy delay. When every attempt fails the result is
// core.FallbackExtraction() and no error is returned.
//
// # Usage
//
//	ext, err := extraction.New(chatClient, "mistral:v0.3",
//	    extraction.WithMaxAttempts(3),
//	    extraction.WithLogger(logger),
//	)
//	summary := ext.Extract(ctx, transcript.Text)
package extraction
