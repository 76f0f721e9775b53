package geotag

import (
    "strings"
    "testing"
)

func TestLoadAugmentIndex(t *testing.T) {
    input := `# prior run
File,Latitude,Longitude,Elevation,City
a.jpg,-33.867850,151.207320,3.5,Sydney
b.jpg,,,,"Broken Hill"
`

    index, err := LoadAugmentIndex(strings.NewReader(input))
    if err != nil {
        t.Fatalf("Could not load augmentation input: %s", err)
    }

    if len(index) != 2 {
        t.Fatalf("Row count not correct: (%d)", len(index))
    }

    row := index["a.jpg"]
    if row[ResultFieldLatitude] != "-33.867850" {
        t.Fatalf("Latitude cell not correct: [%s]", row[ResultFieldLatitude])
    } else if row[ResultFieldCity] != "Sydney" {
        t.Fatalf("City cell not correct: [%s]", row[ResultFieldCity])
    }

    // Empty cells are absent, not empty strings.
    row = index["b.jpg"]
    if _, has := row[ResultFieldLatitude]; has == true {
        t.Fatalf("Empty latitude cell was kept.")
    }

    if row[ResultFieldCity] != "Broken Hill" {
        t.Fatalf("City cell not correct: [%s]", row[ResultFieldCity])
    }
}

func TestLoadAugmentIndex_Empty(t *testing.T) {
    index, err := LoadAugmentIndex(strings.NewReader(""))
    if err != nil {
        t.Fatalf("Could not load empty input: %s", err)
    }

    if len(index) != 0 {
        t.Fatalf("Empty input produced rows: (%d)", len(index))
    }
}

func TestLoadAugmentIndex_MissingFileColumn(t *testing.T) {
    _, err := LoadAugmentIndex(strings.NewReader("Latitude,Longitude\n1.0,2.0\n"))
    if err == nil {
        t.Fatalf("Expected a fault for the missing key column.")
    }
}

func TestNewAugmentStage(t *testing.T) {
    index := AugmentIndex{
        "a.jpg": AugmentRow{
            ResultFieldLatitude:  "-33.867850",
            ResultFieldLongitude: "151.207320",
            ResultFieldElevation: "3.5",
            ResultFieldCity:      "Sydney",
        },
        "b.jpg": AugmentRow{
            ResultFieldCity: "Newcastle",
        },
    }

    store := NewMemoryStore()
    stage := NewAugmentStage(index, store, DefaultQueueDepth)

    item := NewWorkItem("a.jpg", epochUtc)

    forward, err := stage.transform(item)
    if err != nil {
        t.Fatalf("Augment transform failed: %s", err)
    } else if forward != item {
        t.Fatalf("Item was not forwarded.")
    }

    if item.Position == nil {
        t.Fatalf("Position was not applied.")
    } else if item.Position.Latitude != -33.86785 {
        t.Fatalf("Latitude not correct: (%f)", item.Position.Latitude)
    } else if item.Position.HasElevation != true || item.Position.Elevation != 3.5 {
        t.Fatalf("Elevation not correct: %s", item.Position)
    }

    if _, found := item.Tags[TagGpsLatitude]; found == false {
        t.Fatalf("Position tags were not staged.")
    }

    if item.Result[ResultFieldCity] != "Sydney" {
        t.Fatalf("City result not correct: [%s]", item.Result[ResultFieldCity])
    }

    // A row without coordinates applies only the place fields.
    item = NewWorkItem("b.jpg", epochUtc)

    _, err = stage.transform(item)
    if err != nil {
        t.Fatalf("Augment transform failed: %s", err)
    }

    if item.Position != nil {
        t.Fatalf("Partial row produced a position.")
    } else if item.Result[ResultFieldCity] != "Newcastle" {
        t.Fatalf("City result not correct: [%s]", item.Result[ResultFieldCity])
    }
}

func TestNewAugmentStage_UnknownItemPassesThrough(t *testing.T) {
    stage := NewAugmentStage(make(AugmentIndex), NewMemoryStore(), DefaultQueueDepth)

    item := NewWorkItem("unknown.jpg", epochUtc)

    forward, err := stage.transform(item)
    if err != nil {
        t.Fatalf("Augment transform failed: %s", err)
    } else if forward != item {
        t.Fatalf("Unknown item was not forwarded.")
    }

    if item.Dirty() == true {
        t.Fatalf("Unknown item was modified.")
    }
}

func TestNewAugmentStage_MalformedLatitude(t *testing.T) {
    index := AugmentIndex{
        "a.jpg": AugmentRow{
            ResultFieldLatitude:  "not-a-number",
            ResultFieldLongitude: "151.207320",
        },
    }

    stage := NewAugmentStage(index, NewMemoryStore(), DefaultQueueDepth)

    item := NewWorkItem("a.jpg", epochUtc)

    _, err := stage.transform(item)
    if err == nil {
        t.Fatalf("Expected a per-item fault for the malformed cell.")
    }
}
