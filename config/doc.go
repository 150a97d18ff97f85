// Package config loads the runtime's bootstrap configuration from a
// YAML file: script root, entry module, builtin prefix, recognized
// extensions, namespace mounts, and the alias map.
//
// Unknown keys are rejected so a typo fails loudly instead of being
// silently ignored. Every field has a default; an empty file is a
// valid configuration.
package config
