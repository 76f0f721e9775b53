package geotag

import (
    "testing"
)

func TestMemoryStore_SetMarksDirty(t *testing.T) {
    ms := NewMemoryStore()

    item := NewWorkItem("photo.jpg", epochUtc)
    if item.Dirty() == true {
        t.Fatalf("Fresh item is dirty.")
    }

    ms.Set(item, "Artist", TextValue("nobody"))

    if item.Dirty() != true {
        t.Fatalf("Set did not mark the item dirty.")
    }
}

func TestMemoryStore_Get(t *testing.T) {
    ms := NewMemoryStore()

    item := NewWorkItem("photo.jpg", epochUtc)

    _, err := ms.Get(item, "Artist")
    if err != ErrTagNotPresent {
        t.Fatalf("Expected a not-present error: %v", err)
    }

    ms.Set(item, "Artist", TextValue("nobody"))

    value, err := ms.Get(item, "Artist")
    if err != nil {
        t.Fatalf("Could not get staged tag: %s", err)
    } else if value.Kind != TagText || value.Text != "nobody" {
        t.Fatalf("Staged tag not correct: %s", value)
    }

    if ms.Contains(item, "Artist") != true {
        t.Fatalf("Contains did not report the staged tag.")
    } else if ms.Contains(item, "Copyright") != false {
        t.Fatalf("Contains reported an absent tag.")
    }
}

func TestMemoryStore_Commit(t *testing.T) {
    ms := NewMemoryStore()

    item := NewWorkItem("photo.jpg", epochUtc)

    // A clean item commits to nothing.
    err := ms.Commit(item)
    if err != nil {
        t.Fatalf("Clean commit failed: %s", err)
    } else if ms.CommitCount() != 0 {
        t.Fatalf("Clean commit was counted: (%d)", ms.CommitCount())
    }

    ms.Set(item, "Artist", TextValue("nobody"))

    err = ms.Commit(item)
    if err != nil {
        t.Fatalf("Commit failed: %s", err)
    }

    if ms.CommitCount() != 1 {
        t.Fatalf("Commit count not correct: (%d)", ms.CommitCount())
    } else if item.Dirty() != false {
        t.Fatalf("Commit did not clear the dirty flag.")
    }

    committed := ms.Committed("photo.jpg")
    if committed == nil {
        t.Fatalf("Nothing committed for the item.")
    } else if committed["Artist"].Text != "nobody" {
        t.Fatalf("Committed tag not correct: %s", committed["Artist"])
    }

    // A repeated commit of a now-clean item is a no-op.
    err = ms.Commit(item)
    if err != nil {
        t.Fatalf("Repeated commit failed: %s", err)
    } else if ms.CommitCount() != 1 {
        t.Fatalf("Repeated clean commit was counted: (%d)", ms.CommitCount())
    }
}
