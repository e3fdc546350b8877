package engine

import (
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	args := testArguments(t)
	db := testDatabase(t, args)

	if _, err := db.Set("person.name", "Peter"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := db.Set("person.age", 30.0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	posts, err := db.CreateCollection("posts", AutoIncrement("id", 0))
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	if _, err := posts.CreateBulk([]map[string]interface{}{
		{"content": "hi"}, {"content": "yo"},
	}); err != nil {
		t.Fatalf("CreateBulk failed: %v", err)
	}

	snapshotPath := filepath.Join(t.TempDir(), "backup.bson")
	if err := db.Snapshot(snapshotPath); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	// Wreck the live state, then restore.
	if err := db.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := posts.Remove(nil); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if err := db.RestoreSnapshot(snapshotPath); err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}

	name, found, _ := db.Get("person.name")
	if !found || name != "Peter" {
		t.Errorf("person.name = (%v, %v) after restore", name, found)
	}
	age, _, _ := db.Get("person.age")
	if n, ok := asNumber(age); !ok || n != 30 {
		t.Errorf("person.age = %v after restore, want 30", age)
	}
	if posts.Len() != 2 {
		t.Errorf("posts has %d entries after restore, want 2", posts.Len())
	}
	entry, found, err := posts.GetOne(func(e map[string]interface{}) bool { return e["content"] == "yo" })
	if err != nil || !found {
		t.Fatalf("GetOne after restore = (%v, %v, %v)", entry, found, err)
	}
	if n, ok := asNumber(entry["id"]); !ok || n != 1 {
		t.Errorf("restored id = %v, want 1", entry["id"])
	}

	// The restore also rewrote the JSON files.
	reloaded := testDatabase(t, args)
	if found, _ := reloaded.Has("person.name"); !found {
		t.Error("restored tree was not persisted to the data file")
	}
}
