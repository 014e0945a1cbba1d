// Copyright 2023 The Shac Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"hash/fnv"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	natomic "github.com/natefinch/atomic"
	"github.com/zeebo/xxh3"
)

// cacheMagic and cacheFormatVersion identify the on-disk envelope.
// Bump cacheFormatVersion on any change to the field set of
// CachedFileResult or CachedViolation, or to CacheKey's encoding, even
// when gob could still decode old caches; a bumped version makes every
// existing cache file reject as CacheReasonVersionMismatch.
const (
	cacheMagic         = "QNCH"
	cacheFormatVersion = 1
	cacheShardCount    = 16
)

// init registers the concrete types checks are known to stash in
// CachedFileResult.Metrics, so gob can encode/decode them through the
// interface{} field. A check that introduces a new Metrics shape must
// add its type here.
func init() {
	gob.Register(map[string]int64{})
}

// CachedFileResult is what's persisted per file per check: the check's
// name, the violations it found, and the metrics blob it reported.
type CachedFileResult struct {
	CheckName  string
	Violations []CachedViolation
	Metrics    any
}

// cacheEnvelope is the gob-encoded payload, following the magic+version
// header on disk.
type cacheEnvelope struct {
	ToolVersion string
	ConfigHash  uint64
	Entries     map[string]map[CacheKey][]CachedFileResult // path -> key -> per-check results
}

// FileCache is a sharded, concurrency-safe store mapping (path, stat key)
// to cached check results. Reads and writes during a run go through the
// in-memory shards; Load/Persist move the whole cache to and from disk.
type FileCache struct {
	toolVersion string
	configHash  uint64

	shards [cacheShardCount]*cacheShard

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]map[CacheKey][]CachedFileResult
}

// NewFileCache builds an empty cache tagged with the running tool version
// and the current config's hash. Loading from disk validates both before
// adopting any persisted entries.
func NewFileCache(toolVersion string, configHash uint64) *FileCache {
	c := &FileCache{toolVersion: toolVersion, configHash: configHash}
	for i := range c.shards {
		c.shards[i] = &cacheShard{entries: map[string]map[CacheKey][]CachedFileResult{}}
	}
	return c
}

func (c *FileCache) shardFor(path string) *cacheShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return c.shards[h.Sum32()%cacheShardCount]
}

// Get returns the cached results for path at key, iff present and the
// stat key matches exactly: a changed key is a miss, never a stale hit.
func (c *FileCache) Get(path string, key CacheKey) ([]CachedFileResult, bool) {
	s := c.shardFor(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	byKey, ok := s.entries[path]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	results, ok := byKey[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return results, true
}

// Put stores results for path at key, discarding any entry for the same
// path under a different key (the file changed, so old cached key is
// dead weight).
func (c *FileCache) Put(path string, key CacheKey, results []CachedFileResult) {
	s := c.shardFor(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = map[CacheKey][]CachedFileResult{key: results}
}

// GetCheck returns the single named check's cached result for path at
// key, iff the file's overall entry is present at that key and carries
// an entry for checkName.
func (c *FileCache) GetCheck(path string, key CacheKey, checkName string) (CachedFileResult, bool) {
	results, ok := c.Get(path, key)
	if !ok {
		return CachedFileResult{}, false
	}
	for _, r := range results {
		if r.CheckName == checkName {
			return r, true
		}
	}
	return CachedFileResult{}, false
}

// PutCheck merges one check's result into path's entry at key,
// replacing any prior result under the same CheckName without
// disturbing results other checks stored for the same file and key.
// Unlike Put, it never discards a sibling check's cached result just
// because this check ran first.
func (c *FileCache) PutCheck(path string, key CacheKey, result CachedFileResult) {
	s := c.shardFor(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	var merged []CachedFileResult
	if byKey, ok := s.entries[path]; ok {
		for _, r := range byKey[key] {
			if r.CheckName != result.CheckName {
				merged = append(merged, r)
			}
		}
	}
	merged = append(merged, result)
	s.entries[path] = map[CacheKey][]CachedFileResult{key: merged}
}

// Stats returns the cumulative hit/miss counters.
func (c *FileCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Load reads path and adopts its contents into c, provided the on-disk
// format version, tool version, and config hash all match. Any mismatch
// or corruption is a non-fatal CacheError; the caller proceeds with an
// empty cache.
func (c *FileCache) Load(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &CacheError{Op: "load", Reason: CacheReasonAbsent, Err: err}
	}
	if err != nil {
		return &CacheError{Op: "load", Reason: CacheReasonCorrupt, Err: err}
	}
	if len(raw) < len(cacheMagic)+4 || string(raw[:len(cacheMagic)]) != cacheMagic {
		return &CacheError{Op: "load", Reason: CacheReasonCorrupt}
	}
	version := binary.BigEndian.Uint32(raw[len(cacheMagic) : len(cacheMagic)+4])
	if version != cacheFormatVersion {
		return &CacheError{Op: "load", Reason: CacheReasonVersionMismatch}
	}

	var env cacheEnvelope
	dec := gob.NewDecoder(bytes.NewReader(raw[len(cacheMagic)+4:]))
	if err := dec.Decode(&env); err != nil {
		return &CacheError{Op: "load", Reason: CacheReasonCorrupt, Err: err}
	}
	if env.ToolVersion != c.toolVersion {
		return &CacheError{Op: "load", Reason: CacheReasonToolVersionMismatch}
	}
	if env.ConfigHash != c.configHash {
		return &CacheError{Op: "load", Reason: CacheReasonConfigChanged}
	}

	for i := range c.shards {
		c.shards[i].entries = map[string]map[CacheKey][]CachedFileResult{}
	}
	for p, byKey := range env.Entries {
		s := c.shardFor(p)
		s.entries[p] = byKey
	}
	return nil
}

// Persist writes the whole cache to path atomically: encode to a temp
// file in the same directory, then rename over the destination, so a
// concurrent reader never observes a partially written cache.
func (c *FileCache) Persist(path string) error {
	env := cacheEnvelope{
		ToolVersion: c.toolVersion,
		ConfigHash:  c.configHash,
		Entries:     map[string]map[CacheKey][]CachedFileResult{},
	}
	for _, s := range c.shards {
		s.mu.RLock()
		for p, byKey := range s.entries {
			env.Entries[p] = byKey
		}
		s.mu.RUnlock()
	}

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(env); err != nil {
		return &CacheError{Op: "persist", Reason: "encode failed", Err: err}
	}

	var buf bytes.Buffer
	buf.WriteString(cacheMagic)
	var versionBytes [4]byte
	binary.BigEndian.PutUint32(versionBytes[:], cacheFormatVersion)
	buf.Write(versionBytes[:])
	buf.Write(payload.Bytes())

	if err := natomic.WriteFile(path, &buf); err != nil {
		return &CacheError{Op: "persist", Reason: "atomic write failed", Err: err}
	}
	return nil
}

// configHashFields is the canonical, order-stable projection of config
// that changes the cache's validity. Output-only settings (color, limit,
// output format) are deliberately excluded: toggling them shouldn't
// invalidate every cached result.
type configHashFields struct {
	ClocLimits      map[string]int64
	EscapePatterns  []string
	WorkspacePkgs   []string
	SuppressReqs    map[string]string
}

// ConfigHash derives the cache-gating hash directly from a loaded
// Config, projecting out the fields configHashFields cares about.
func ConfigHash(cfg *Config) uint64 {
	clocLimits := map[string]int64{
		"max_lines":      cfg.Check.Cloc.MaxLines,
		"max_lines_test": cfg.Check.Cloc.MaxLinesTest,
	}
	if cfg.Check.Cloc.MaxTokens.Set {
		if cfg.Check.Cloc.MaxTokens.Disabled {
			clocLimits["max_tokens"] = -1
		} else {
			clocLimits["max_tokens"] = cfg.Check.Cloc.MaxTokens.Value
		}
	}
	for _, lang := range []string{"rust", "golang", "javascript", "python", "ruby", "shell"} {
		o := cfg.Lang(lang).Cloc
		if o.MaxLines > 0 {
			clocLimits[lang+".max_lines"] = o.MaxLines
		}
		if o.MaxLinesTest > 0 {
			clocLimits[lang+".max_lines_test"] = o.MaxLinesTest
		}
		if o.MaxTokens.Set && !o.MaxTokens.Disabled {
			clocLimits[lang+".max_tokens"] = o.MaxTokens.Value
		}
	}

	patterns := make([]string, 0, len(cfg.Check.Escapes.Patterns))
	for _, p := range cfg.Check.Escapes.Patterns {
		patterns = append(patterns, p.Name+"\x00"+p.Pattern+"\x00"+p.Action)
	}

	suppressReqs := map[string]string{
		"rust":       cfg.Rust.Suppress.Comment,
		"golang":     cfg.Golang.Suppress.Comment,
		"javascript": cfg.JavaScript.Suppress.Comment,
		"python":     cfg.Python.Suppress.Comment,
		"ruby":       cfg.Ruby.Suppress.Comment,
		"shell":      cfg.Shell.Suppress.Comment,
	}

	return ComputeConfigHash(configHashFields{
		ClocLimits:     clocLimits,
		EscapePatterns: patterns,
		WorkspacePkgs:  cfg.Project.Workspace.Packages,
		SuppressReqs:   suppressReqs,
	})
}

// ComputeConfigHash derives the 64-bit hash that gates cache reuse, using
// xxh3 over a canonical byte encoding of the fields that affect check
// output.
func ComputeConfigHash(fields configHashFields) uint64 {
	var buf bytes.Buffer
	writeSortedMap(&buf, fields.ClocLimits)
	for _, p := range fields.EscapePatterns {
		buf.WriteString(p)
		buf.WriteByte(0)
	}
	for _, p := range fields.WorkspacePkgs {
		buf.WriteString(p)
		buf.WriteByte(0)
	}
	writeSortedStringMap(&buf, fields.SuppressReqs)
	return xxh3.Hash(buf.Bytes())
}

func writeSortedMap(buf *bytes.Buffer, m map[string]int64) {
	keys := sortedKeys(m)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte('=')
		var v [8]byte
		binary.BigEndian.PutUint64(v[:], uint64(m[k]))
		buf.Write(v[:])
		buf.WriteByte(0)
	}
}

func writeSortedStringMap(buf *bytes.Buffer, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(m[k])
		buf.WriteByte(0)
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
