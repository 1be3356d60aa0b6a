// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across thinkly packages.
//
// # Atomic Writes
//
// AtomicWriteFile writes to a temporary file in the target directory, fsyncs
// it and renames it over the destination. Readers observe either the old file
// or the complete new one, never a partial write.
//
// # Display Width
//
// TruncateWidth, PadRight and StringWidth measure terminal columns with
// go-runewidth, so CJK and emoji content lines up in tables.
package util
