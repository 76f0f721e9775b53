package geotag

import (
    "fmt"
    "time"
)

// TagKind discriminates the closed set of metadata value shapes.
type TagKind int

const (
    TagText TagKind = iota
    TagInteger
    TagRationalList
    TagTimestamp
)

// Rational is an unsigned fraction, the shape EXIF uses for coordinates and
// altitudes.
type Rational struct {
    Numerator   uint32
    Denominator uint32
}

// TagValue is one metadata value. Exactly the field selected by Kind is
// meaningful; stages match on Kind rather than on ambient type.
type TagValue struct {
    Kind      TagKind
    Text      string
    Integer   int64
    Rationals []Rational
    Timestamp time.Time
}

func TextValue(text string) TagValue {
    return TagValue{
        Kind: TagText,
        Text: text,
    }
}

func IntegerValue(value int64) TagValue {
    return TagValue{
        Kind:    TagInteger,
        Integer: value,
    }
}

func RationalListValue(rationals []Rational) TagValue {
    return TagValue{
        Kind:      TagRationalList,
        Rationals: rationals,
    }
}

func TimestampValue(timestamp time.Time) TagValue {
    return TagValue{
        Kind:      TagTimestamp,
        Timestamp: timestamp,
    }
}

func (tv TagValue) String() string {
    switch tv.Kind {
    case TagText:
        return fmt.Sprintf("TagValue<TEXT=[%s]>", tv.Text)
    case TagInteger:
        return fmt.Sprintf("TagValue<INTEGER=(%d)>", tv.Integer)
    case TagRationalList:
        return fmt.Sprintf("TagValue<RATIONALS=%v>", tv.Rationals)
    case TagTimestamp:
        return fmt.Sprintf("TagValue<TIMESTAMP=[%s]>", tv.Timestamp.Format(time.RFC3339))
    }

    return "TagValue<INVALID>"
}

// Result-row field names, also used as the report column order.
const (
    ResultFieldFile          = "File"
    ResultFieldDate          = "Date"
    ResultFieldLatitude      = "Latitude"
    ResultFieldLongitude     = "Longitude"
    ResultFieldElevation     = "Elevation"
    ResultFieldCity          = "City"
    ResultFieldProvinceState = "ProvinceState"
    ResultFieldCountryName   = "CountryName"
)

// WorkItem is the mutable per-photo record carried through the pipeline. It is
// exclusively owned by whichever stage currently holds it; ownership transfers
// at each queue handoff and a stage must not touch an item it has forwarded.
type WorkItem struct {
    // Filepath is the opaque identity of the photo.
    Filepath string

    // Timestamp is the capture time, already adjusted for any camera clock
    // offset.
    Timestamp time.Time

    CameraModel string

    // Tags maps opaque metadata tag names to typed values.
    Tags map[string]TagValue

    // Position is the resolved geographic position, nil until correlation or
    // augmentation provides one.
    Position *Position

    // Result collects the output-row fields for the writer stage.
    Result map[string]string

    dirty bool
}

func NewWorkItem(filepath string, timestamp time.Time) *WorkItem {
    return &WorkItem{
        Filepath:  filepath,
        Timestamp: timestamp,
        Tags:      make(map[string]TagValue),
        Result:    make(map[string]string),
    }
}

func (wi *WorkItem) String() string {
    return fmt.Sprintf("WorkItem<FILEPATH=[%s] TIMESTAMP=[%s]>", wi.Filepath, wi.Timestamp.Format(time.RFC3339))
}

// setTag stores the value and marks the item as needing a commit. All store
// implementations funnel their writes through here.
func (wi *WorkItem) setTag(tag string, value TagValue) {
    wi.Tags[tag] = value
    wi.dirty = true
}

func (wi *WorkItem) SetResult(field, value string) {
    wi.Result[field] = value
}

// Dirty reports whether any tag was written since the item was created or last
// committed.
func (wi *WorkItem) Dirty() bool {
    return wi.dirty
}

func (wi *WorkItem) clearDirty() {
    wi.dirty = false
}
