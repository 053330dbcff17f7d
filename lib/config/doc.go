// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the tessera
// CLI.
//
// Configuration is loaded from a single file specified by either the
// TESSERA_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no ~/.config discovery and no
// automatic file search; with no file at all the defaults point at a
// local catalog. This keeps configuration deterministic and
// auditable with no hidden overrides.
//
// Unknown keys in the file are an error. Variable expansion is
// performed on path fields after loading: ${HOME} and ${VAR:-default}
// patterns are expanded. No other environment variables override
// config values.
//
// Key exports:
//
//   - [Config] -- catalog connection, cache location, locale, log level
//   - [Default] -- a Config usable against a local catalog
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other tessera packages.
package config
