// Package config provides configuration loading, merging, and validation
// facilities for the vault.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier ones):
//  1. JSON or YAML config file
//  2. Environment variables (CRYPTOSAFE_*)
//  3. Command-line flags
//
// Built-in defaults fill whatever no source set. The main entry point is
// [Load], fed with the flags registered by [RegisterFlags].
package config
