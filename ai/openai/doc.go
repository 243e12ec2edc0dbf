// Package openai provides ai.Embedder and ai.Summarizer implementations
// backed by OpenAI-compatible HTTP APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// Both services are built on langchaingo clients and authenticate with a
// placeholder token so local servers work without credentials.
package openai
