// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// Transcriber uploads audio to an OpenAI-compatible /audio/transcriptions
// endpoint (OpenAI itself, faster-whisper-server, LocalAI, ...) and asks for
// verbose_json so the detected language comes back with the text.
// NewChatClient wraps langchaingo's OpenAI client as an ai.ChatClient.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithTranscriptionHost("http://localhost:8000"),  // /v1 added automatically
//	    ai.WithChatBackend(ai.ChatBackendOllama),
//	)
//
//	provider, err := openai.NewProvider(config, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	tr, err := provider.Transcriber().Transcribe(ctx, "/incoming/call.wav")
//	reply, err := provider.ChatClient().Chat(ctx, "", messages)
package openai
