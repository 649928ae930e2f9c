// Package openai implements the ai interfaces against OpenAI-compatible
// APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// The vision analyzer sends images as binary content parts on multimodal
// chat completions; structured calls (OCR with confidence,
// classification) request JSON mode and run replies through a small
// repair pass before parsing, since local models frequently emit
// slightly malformed JSON.
package openai
