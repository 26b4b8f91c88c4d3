package ai

// Chat backends understood by Config.ChatBackend.
const (
	// ChatBackendOpenAI talks to an OpenAI-compatible /v1 chat completions API.
	ChatBackendOpenAI = "openai"

	// ChatBackendOllama talks to an Ollama server's native API.
	ChatBackendOllama = "ollama"
)

// ChatBackends lists the supported chat backends.
var ChatBackends = []string{
	ChatBackendOpenAI,
	ChatBackendOllama,
}
