// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable key/value persistence for thinkly.
//
// Every value is an opaque byte slice (the session layer stores JSON).
// Each Set replaces the whole value atomically: a crash leaves either the
// old value or the new one, never a partial write.
//
// # Backends
//
//   - FileKV: one file per key, written with util.AtomicWriteFile
//   - SQLiteKV: a single kv table in a pure-Go SQLite database
//   - MemoryKV: in-process map, for tests and ephemeral runs
//
// # Usage
//
//	kv, err := storage.Open(cfg.Storage)
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//
//	if err := kv.Set(storage.KeySelectedModel, []byte(`"mistral"`)); err != nil {
//	    return err
//	}
package storage
