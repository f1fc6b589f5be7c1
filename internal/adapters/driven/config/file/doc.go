// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration at <config_dir>/config.toml
//   - PromptStore: user-editable answering prompts at <config_dir>/prompts/
package file
