package geotag

import (
    "os"
    "path"
    "reflect"
    "testing"

    "github.com/dsoprea/go-logging"

    "github.com/dsoprea/go-exif/v3/common"
)

func TestSidecar_WriteAndRead(t *testing.T) {
    imageFilepath := path.Join(t.TempDir(), "photo.jpg")

    err := writeSidecar(imageFilepath, map[string]string{
        ResultFieldCity:        "Sydney",
        ResultFieldCountryName: "Australia",
    })

    if err != nil {
        t.Fatalf("Could not write sidecar: %s", err)
    }

    if _, err := os.Stat(imageFilepath + SidecarSuffix); err != nil {
        t.Fatalf("Sidecar file was not created: %s", err)
    }

    tags, err := readSidecar(imageFilepath)
    if err != nil {
        t.Fatalf("Could not read sidecar: %s", err)
    }

    if tags[ResultFieldCity] != "Sydney" {
        t.Fatalf("City not correct: [%s]", tags[ResultFieldCity])
    } else if tags[ResultFieldCountryName] != "Australia" {
        t.Fatalf("Country not correct: [%s]", tags[ResultFieldCountryName])
    }
}

func TestSidecar_ReadAbsent(t *testing.T) {
    imageFilepath := path.Join(t.TempDir(), "photo.jpg")

    tags, err := readSidecar(imageFilepath)
    if err != nil {
        t.Fatalf("Absent sidecar should read as empty: %s", err)
    } else if len(tags) != 0 {
        t.Fatalf("Absent sidecar produced tags: %v", tags)
    }
}

func TestSidecar_WriteMerges(t *testing.T) {
    imageFilepath := path.Join(t.TempDir(), "photo.jpg")

    err := writeSidecar(imageFilepath, map[string]string{
        ResultFieldCity:          "Sydney",
        ResultFieldProvinceState: "New South Wales",
    })

    if err != nil {
        t.Fatalf("Could not write sidecar: %s", err)
    }

    err = writeSidecar(imageFilepath, map[string]string{
        ResultFieldCity: "Newcastle",
    })

    if err != nil {
        t.Fatalf("Could not rewrite sidecar: %s", err)
    }

    tags, err := readSidecar(imageFilepath)
    if err != nil {
        t.Fatalf("Could not read sidecar: %s", err)
    }

    if tags[ResultFieldCity] != "Newcastle" {
        t.Fatalf("Rewritten tag not correct: [%s]", tags[ResultFieldCity])
    }

    // Tags absent from the second write survive.
    if tags[ResultFieldProvinceState] != "New South Wales" {
        t.Fatalf("Merged tag not correct: [%s]", tags[ResultFieldProvinceState])
    }
}

func TestExifStore_CommitTextTagsToSidecar(t *testing.T) {
    imageFilepath := path.Join(t.TempDir(), "photo.jpg")

    es := NewExifStore()

    item := NewWorkItem(imageFilepath, epochUtc)
    es.Set(item, ResultFieldCity, TextValue("Sydney"))

    err := es.Commit(item)
    if err != nil {
        t.Fatalf("Could not commit: %s", err)
    }

    if item.Dirty() == true {
        t.Fatalf("Commit did not clear the dirty flag.")
    }

    tags, err := readSidecar(imageFilepath)
    if err != nil {
        t.Fatalf("Could not read sidecar: %s", err)
    }

    if tags[ResultFieldCity] != "Sydney" {
        t.Fatalf("Committed tag not correct: [%s]", tags[ResultFieldCity])
    }
}

func TestExifStore_CommitClean(t *testing.T) {
    imageFilepath := path.Join(t.TempDir(), "photo.jpg")

    es := NewExifStore()

    item := NewWorkItem(imageFilepath, epochUtc)

    err := es.Commit(item)
    if err != nil {
        t.Fatalf("Clean commit failed: %s", err)
    }

    if _, err := os.Stat(imageFilepath + SidecarSuffix); os.IsNotExist(err) == false {
        t.Fatalf("Clean commit wrote a sidecar.")
    }
}

func TestExifStore_GetFromSidecar(t *testing.T) {
    imageFilepath := path.Join(t.TempDir(), "photo.jpg")

    err := writeSidecar(imageFilepath, map[string]string{
        ResultFieldCity: "Sydney",
    })

    if err != nil {
        t.Fatalf("Could not write sidecar: %s", err)
    }

    // An empty stand-in; a read must fall through the EXIF scan to the
    // sidecar without faulting on the missing EXIF block.
    err = os.WriteFile(imageFilepath, []byte{}, 0o644)
    if err != nil {
        t.Fatalf("Could not write image stand-in: %s", err)
    }

    es := NewExifStore()

    item := NewWorkItem(imageFilepath, epochUtc)

    value, err := es.Get(item, ResultFieldCity)
    if err != nil {
        t.Fatalf("Could not get sidecar tag: %s", err)
    } else if value.Text != "Sydney" {
        t.Fatalf("Sidecar tag not correct: %s", value)
    }

    // Read-through caching does not dirty the item.
    if item.Dirty() == true {
        t.Fatalf("Read-through dirtied the item.")
    }

    if _, found := item.Tags[ResultFieldCity]; found == false {
        t.Fatalf("Read-through value was not cached on the item.")
    }

    _, err = es.Get(item, "Artist")
    if log.Is(err, ErrTagNotPresent) == false {
        t.Fatalf("Expected a not-present error: %v", err)
    }
}

func TestEncodeGpsValue(t *testing.T) {
    encoded, err := encodeGpsValue(TextValue("S"))
    if err != nil {
        t.Fatalf("Could not encode text: %s", err)
    } else if encoded != "S" {
        t.Fatalf("Encoded text not correct: %v", encoded)
    }

    encoded, err = encodeGpsValue(IntegerValue(0))
    if err != nil {
        t.Fatalf("Could not encode integer: %s", err)
    } else if reflect.DeepEqual(encoded, []byte{0}) == false {
        t.Fatalf("Encoded integer not correct: %v", encoded)
    }

    encoded, err = encodeGpsValue(RationalListValue([]Rational{
        {Numerator: 33, Denominator: 1},
        {Numerator: 52, Denominator: 1},
        {Numerator: 426, Denominator: 100},
    }))

    if err != nil {
        t.Fatalf("Could not encode rationals: %s", err)
    }

    expected := []exifcommon.Rational{
        {Numerator: 33, Denominator: 1},
        {Numerator: 52, Denominator: 1},
        {Numerator: 426, Denominator: 100},
    }

    if reflect.DeepEqual(encoded, expected) == false {
        t.Fatalf("Encoded rationals not correct: %v", encoded)
    }
}
