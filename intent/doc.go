// Package intent classifies inbound customer messages into routing intents
// and extracts structured entities (tax id, invoice number).
//
// Classification is model-assisted but never model-dependent: a keyword
// guard-rail table corrects obvious misclassifications, and a pure keyword
// path serves as fallback when no model is configured or the call fails.
// Classify therefore never returns an error.
package intent
