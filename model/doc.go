// Package model defines the provider-agnostic abstractions for calling
// language models inside cargobot.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Expose HTTP status information for retry classification (StatusError)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (pipeline, intent) remain decoupled from vendor SDKs.
package model
