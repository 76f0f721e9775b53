package geotag

import (
    "errors"
)

var (
    // ErrTagNotPresent is returned when a tag is neither staged on the item
    // nor available from the backing file.
    ErrTagNotPresent = errors.New("tag not present")
)

// MetadataStore is the per-photo metadata collaborator. Tag names are opaque
// strings; Set marks the item dirty and Commit writes back only if it is.
type MetadataStore interface {
    Contains(item *WorkItem, tag string) bool
    Get(item *WorkItem, tag string) (value TagValue, err error)
    Set(item *WorkItem, tag string, value TagValue)
    Commit(item *WorkItem) (err error)
}

// MemoryStore keeps committed metadata in memory. It backs dry runs and tests.
type MemoryStore struct {
    committed map[string]map[string]TagValue

    commitCount int
}

func NewMemoryStore() *MemoryStore {
    return &MemoryStore{
        committed: make(map[string]map[string]TagValue),
    }
}

func (ms *MemoryStore) Contains(item *WorkItem, tag string) bool {
    _, found := item.Tags[tag]
    return found
}

func (ms *MemoryStore) Get(item *WorkItem, tag string) (value TagValue, err error) {
    value, found := item.Tags[tag]
    if found == false {
        return TagValue{}, ErrTagNotPresent
    }

    return value, nil
}

func (ms *MemoryStore) Set(item *WorkItem, tag string, value TagValue) {
    item.setTag(tag, value)
}

func (ms *MemoryStore) Commit(item *WorkItem) (err error) {
    if item.Dirty() == false {
        return nil
    }

    tags := make(map[string]TagValue, len(item.Tags))
    for tag, value := range item.Tags {
        tags[tag] = value
    }

    ms.committed[item.Filepath] = tags
    ms.commitCount++

    item.clearDirty()

    return nil
}

// Committed returns the tags last committed for the given identity, or nil.
func (ms *MemoryStore) Committed(filepath string) map[string]TagValue {
    return ms.committed[filepath]
}

func (ms *MemoryStore) CommitCount() int {
    return ms.commitCount
}
