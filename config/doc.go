// Package config loads application settings for the CLI and examples.
//
// Values are layered: built-in defaults, then an optional YAML file, then a
// .env file in the working directory, then AGENTGRAPH_* environment
// variables. The result is validated before it is returned. Provider
// credentials are not part of the config; the vendor SDKs read
// OPENAI_API_KEY and ANTHROPIC_API_KEY themselves (a .env file may set them).
package config
