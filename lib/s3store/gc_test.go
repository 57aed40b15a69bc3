// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package s3store

import (
	"slices"
	"strconv"
	"testing"
	"time"
)

var gcNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func entry(key string, age time.Duration) Entry {
	return Entry{Key: key, LastModified: gcNow.Add(-age), Size: 10}
}

func TestSelectGarbage_KeepsYoungPreservedData(t *testing.T) {
	entries := []Entry{
		entry("b/d/v1.data", 48*time.Hour),
		entry("b/d/v1.meta", 48*time.Hour),
		entry("b/d/v2.data", time.Hour),
	}
	got := SelectGarbage(entries, map[string]bool{"v2": true}, gcNow, DefaultGraceWindow)
	want := []string{"b/d/v1.data", "b/d/v1.meta"}
	if !slices.Equal(got, want) {
		t.Errorf("SelectGarbage = %q, want %q", got, want)
	}
}

func TestSelectGarbage_DanglingMeta(t *testing.T) {
	entries := []Entry{
		entry("b/d/v1.meta", time.Second),
		entry("b/d/v2.meta", 72*time.Hour),
	}
	got := SelectGarbage(entries, nil, gcNow, DefaultGraceWindow)
	want := []string{"b/d/v1.meta", "b/d/v2.meta"}
	if !slices.Equal(got, want) {
		t.Errorf("SelectGarbage = %q, want %q", got, want)
	}
}

func TestSelectGarbage_DanglingData(t *testing.T) {
	entries := []Entry{
		entry("b/d/young.data", 23*time.Hour),
		entry("b/d/old.data", 25*time.Hour),
		entry("b/d/old-preserved.data", 25*time.Hour),
	}
	got := SelectGarbage(entries, map[string]bool{"old-preserved": true}, gcNow, DefaultGraceWindow)
	want := []string{"b/d/old.data"}
	if !slices.Equal(got, want) {
		t.Errorf("SelectGarbage = %q, want %q", got, want)
	}

	got = SelectGarbage(entries, nil, gcNow, time.Hour)
	want = []string{"b/d/old-preserved.data", "b/d/old.data", "b/d/young.data"}
	if !slices.Equal(got, want) {
		t.Errorf("SelectGarbage with a 1h window = %q, want %q", got, want)
	}
}

func TestSelectGarbage_PreservedPairAndForeignKeys(t *testing.T) {
	entries := []Entry{
		entry("b/d/active.data", 72*time.Hour),
		entry("b/d/active.meta", 72*time.Hour),
		entry("b/d/notes.txt", 72*time.Hour),
	}
	if got := SelectGarbage(entries, map[string]bool{"active": true}, gcNow, DefaultGraceWindow); len(got) != 0 {
		t.Errorf("SelectGarbage = %q, want nothing", got)
	}
}

func TestLatestComplete(t *testing.T) {
	entries := []Entry{
		entry("b/d/newest-incomplete.data", time.Minute),
		entry("b/d/old.data", 3*time.Hour),
		entry("b/d/old.meta", 3*time.Hour),
		entry("b/d/mid.data", 2*time.Hour),
		entry("b/d/mid.meta", 2*time.Hour),
		entry("b/d/orphan.meta", time.Second),
	}
	latest, version, ok := LatestComplete(entries)
	if !ok {
		t.Fatal("LatestComplete found nothing")
	}
	if version != "mid" || latest.Key != "b/d/mid.data" {
		t.Errorf("LatestComplete = %q (%s), want mid", version, latest.Key)
	}
}

func TestLatestComplete_TieBreak(t *testing.T) {
	entries := []Entry{
		entry("b/d/bbb.data", time.Hour),
		entry("b/d/bbb.meta", time.Hour),
		entry("b/d/aaa.data", time.Hour),
		entry("b/d/aaa.meta", time.Hour),
	}
	if _, version, _ := LatestComplete(entries); version != "bbb" {
		t.Errorf("tie broken to %q, want bbb", version)
	}
}

func TestLatestComplete_None(t *testing.T) {
	if _, _, ok := LatestComplete([]Entry{entry("b/d/v1.data", time.Hour)}); ok {
		t.Error("a lone .data entry is not a complete revision")
	}
	if _, _, ok := LatestComplete(nil); ok {
		t.Error("an empty listing has no complete revision")
	}
}

func TestBatches(t *testing.T) {
	keys := make([]string, 2500)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	got := batches(keys, maxDeleteBatch)
	if len(got) != 3 || len(got[0]) != 1000 || len(got[1]) != 1000 || len(got[2]) != 500 {
		t.Errorf("batch sizes = %d batches", len(got))
	}
	if len(batches(nil, maxDeleteBatch)) != 0 {
		t.Error("no keys should produce no batches")
	}
}
