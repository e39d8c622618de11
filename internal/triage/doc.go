// Package triage converts free-text clinical notes into structured,
// safety-biased triage records by delegating reasoning to an external
// LLM provider. It defines the Engine (prompt, provider call, reply
// normalization, safety fallback), the Service (records, persistence,
// notifications), the Store interface, and the domain models.
package triage
