// Package llm provides language model clients for the outreach agents.
// It supports OpenAI-compatible endpoints (OpenAI, Groq), Anthropic and
// Gemini/Vertex AI, with retry logic, rate limiting, response caching and
// JSON extraction with schema validation.
package llm
