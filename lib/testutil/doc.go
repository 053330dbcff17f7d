// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for tessera packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. These are
// the only place in the test suite where real wall-clock timeouts are
// appropriate; everything else schedules against an injected clock
// and tests drive a fake.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since a test that cannot complete its channel choreography is not
// recoverable.
//
// This package has no tessera-internal dependencies.
package testutil
