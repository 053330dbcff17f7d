// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the tessera CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/tessera/main.go
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Command parameter structs bind their flags declaratively through
// [BindFlags] struct tags, or imperatively by implementing [FlagBinder].
// [ConnectionParams] is the shared binder for commands that resolve
// configuration and talk to the catalog service: it contributes --config,
// --catalog-url, and --token-file, and its Connect method yields a ready
// [catalogclient.Client]. [JSONOutput] contributes the --json flag and
// the EmitJSON half of the text/JSON output split.
package cli
