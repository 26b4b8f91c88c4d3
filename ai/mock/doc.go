// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Transcriber, ai.ChatClient,
// and ai.AIProvider that run without external services.
//
// # Usage
//
// Script a chat model that fails once, then answers with fenced JSON:
//
//	chat := mock.NewMockChatClient(
//	    mock.Reply{Err: errors.New("connection reset")},
//	    mock.Reply{Content: "```json\n{\"intent\":\"OTHER\",\"entities\":[]}\n```"},
//	)
//
// Inject custom transcription behavior:
//
//	tr := mock.NewMockTranscriber()
//	tr.TranscribeFunc = func(ctx context.Context, path string) (ai.Transcription, error) {
//	    return ai.Transcription{Text: "hello"}, nil
//	}
//
//	// Check call counts
//	count := tr.CallCount()
//
// # Default Behavior
//
//   - MockTranscriber: returns "transcript of <basename>" for existing regular
//     files and ai.ErrAudioNotFound otherwise
//   - MockChatClient: plays back its script, then returns ErrScriptExhausted
//   - MockProvider: aggregates a default transcriber and a chat client that
//     always answers with an OTHER intent
//
// All mocks are safe for concurrent use.
package mock
