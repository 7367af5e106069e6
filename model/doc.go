// Package model defines the provider-agnostic abstraction for the language
// model backend that chat nodes call.
//
// A Model turns a conversation (a slice of core.Message plus optional tool
// definitions) into a single assistant message, streamed as a sequence of
// Response values on a channel pair. Vendor adapters live in the openai and
// anthropic subpackages; MockModel and NewRetryModel are provider neutral.
//
// Models are passed to nodes explicitly. There is no process-wide default
// backend, so independent graphs (and tests) can use different models.
package model
