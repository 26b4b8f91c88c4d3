package extraction

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/poiesic/hearsay/ai"
	"github.com/poiesic/hearsay/core"
	"github.com/sirupsen/logrus"
)

// Extractor turns transcription text into a validated core.Extraction by
// asking a chat model and coercing its free-text reply.
//
// Each call runs a bounded state machine: send the prompt, try to parse the
// reply directly, then try the scanned and repaired {...} span, then retry.
// After RetryPolicy.MaxAttempts unsuccessful attempts the fallback value is
// returned. Extract never fails.
type Extractor struct {
	client ai.ChatClient
	model  string
	policy RetryPolicy
	logger logrus.FieldLogger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(e *Extractor) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		e.policy = policy
		return nil
	}
}

// WithMaxAttempts keeps the default delay schedule but changes the attempt bound.
func WithMaxAttempts(n int) Option {
	return func(e *Extractor) error {
		policy := e.policy
		policy.MaxAttempts = n
		if err := policy.Validate(); err != nil {
			return err
		}
		e.policy = policy
		return nil
	}
}

// WithLogger sets the logger used by the extractor.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Extractor) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// Result describes how an extraction terminated.
type Result struct {
	Extraction core.Extraction
	// Attempts is the number of model calls made.
	Attempts int
	// Outcomes holds the classification of each attempt, in order.
	Outcomes []Outcome
	// Fallback is true when no attempt produced a valid extraction.
	Fallback bool
}

// New creates an Extractor that sends prompts to model through client.
// An empty model uses the client's default.
func New(client ai.ChatClient, model string, opts ...Option) (*Extractor, error) {
	if client == nil {
		return nil, ErrChatClientRequired
	}

	e := &Extractor{
		client: client,
		model:  model,
		policy: DefaultRetryPolicy(),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.WithField("component", "extractor")
	return e, nil
}

// Extract returns the structured extraction for text, or the fallback
// value when the model never produced a valid reply.
func (e *Extractor) Extract(ctx context.Context, text string) core.Extraction {
	return e.ExtractDetailed(ctx, text).Extraction
}

// ExtractDetailed is Extract plus a record of every attempt.
func (e *Extractor) ExtractDetailed(ctx context.Context, text string) Result {
	messages := []ai.Message{
		{Role: ai.RoleUser, Content: BuildPrompt(text)},
	}
	bo := e.policy.newBackOff()

	var result Result
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			e.logger.WithField("attempt", attempt).Warn("extraction cancelled")
			break
		}

		result.Attempts = attempt
		extraction, outcome := e.attempt(ctx, messages, attempt)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome == OutcomeValid {
			result.Extraction = extraction
			if attempt > 1 {
				e.logger.WithField("attempt", attempt).Debug("extraction succeeded after retry")
			}
			return result
		}

		// Don't sleep after the last attempt
		if attempt == e.policy.MaxAttempts {
			break
		}
		delay := bo.NextBackOff()
		if delay == backoff.Stop {
			e.logger.WithField("attempt", attempt).Debug("backoff stopped retries early")
			break
		}
		if !wait(ctx, delay) {
			break
		}
	}

	e.logger.WithFields(logrus.Fields{
		"attempts": result.Attempts,
		"outcomes": outcomeStrings(result.Outcomes),
	}).Warn("extraction exhausted, using fallback")

	result.Extraction = core.FallbackExtraction()
	result.Fallback = true
	return result
}

func (e *Extractor) attempt(ctx context.Context, messages []ai.Message, attempt int) (core.Extraction, Outcome) {
	start := time.Now()
	raw, err := e.client.Chat(ctx, e.model, messages)
	if err != nil {
		e.logger.WithError(err).WithField("attempt", attempt).Warn("chat call failed")
		return core.Extraction{}, OutcomeCallFailed
	}

	extraction, outcome := Classify(raw)
	entry := e.logger.WithFields(logrus.Fields{
		"attempt": attempt,
		"outcome": outcome.String(),
		"elapsed": time.Since(start),
	})
	if outcome != OutcomeValid {
		entry.WithField("response", raw).Warn("unusable model reply")
	} else {
		entry.WithField("intent", extraction.Intent).Debug("model reply accepted")
	}
	return extraction, outcome
}

func outcomeStrings(outcomes []Outcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.String()
	}
	return out
}
