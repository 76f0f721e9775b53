package geotag

import (
    "os"
    "sort"

    "encoding/json"

    "github.com/dsoprea/go-logging"

    "github.com/dsoprea/go-exif/v3"
    "github.com/dsoprea/go-exif/v3/common"
    "github.com/dsoprea/go-jpeg-image-structure/v2"
)

const (
    // SidecarSuffix is appended to the image file-path to name the sidecar
    // holding tags that have no EXIF representation.
    SidecarSuffix = ".geotag.json"

    gpsIfdPath = "IFD/GPSInfo"
)

var (
    exifStoreLogger = log.NewLogger("geotag.exif_store")
)

// exifGpsTags are the staged tag names committed into the GPS IFD. Everything
// else that is textual goes to the sidecar.
var exifGpsTags = map[string]bool{
    TagGpsLatitude:     true,
    TagGpsLatitudeRef:  true,
    TagGpsLongitude:    true,
    TagGpsLongitudeRef: true,
    TagGpsAltitude:     true,
    TagGpsAltitudeRef:  true,
}

// ExifStore reads and writes photo metadata in place. GPS tags are rewritten
// into the JPEG's EXIF block; text tags without an EXIF home (city, province,
// country) are committed to a JSON sidecar next to the image.
type ExifStore struct {
}

func NewExifStore() *ExifStore {
    return &ExifStore{}
}

func (es *ExifStore) Contains(item *WorkItem, tag string) bool {
    if _, found := item.Tags[tag]; found == true {
        return true
    }

    _, err := es.Get(item, tag)

    return err == nil
}

// Get returns the staged value if present, else reads through to the file's
// EXIF data and then to the sidecar. Read-through values are cached on the
// item without dirtying it.
func (es *ExifStore) Get(item *WorkItem, tag string) (value TagValue, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if value, found := item.Tags[tag]; found == true {
        return value, nil
    }

    value, err = es.readExifTag(item.Filepath, tag)
    if err == nil {
        item.Tags[tag] = value
        return value, nil
    } else if log.Is(err, ErrTagNotPresent) == false {
        log.Panic(err)
    }

    sidecar, err := readSidecar(item.Filepath)
    log.PanicIf(err)

    if text, found := sidecar[tag]; found == true {
        value = TextValue(text)
        item.Tags[tag] = value

        return value, nil
    }

    return TagValue{}, ErrTagNotPresent
}

func (es *ExifStore) Set(item *WorkItem, tag string, value TagValue) {
    item.setTag(tag, value)
}

// Commit writes the staged tags back: GPS tags into the JPEG, remaining text
// tags into the sidecar. No write happens for a clean item.
func (es *ExifStore) Commit(item *WorkItem) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    if item.Dirty() == false {
        return nil
    }

    gpsTagNames := make([]string, 0)
    sidecarTags := make(map[string]string)

    for tag, value := range item.Tags {
        if exifGpsTags[tag] == true {
            gpsTagNames = append(gpsTagNames, tag)
        } else if value.Kind == TagText {
            sidecarTags[tag] = value.Text
        }
    }

    if len(gpsTagNames) > 0 {
        // Deterministic IFD build order.
        sort.Strings(gpsTagNames)

        err := es.commitGpsTags(item, gpsTagNames)
        log.PanicIf(err)
    }

    if len(sidecarTags) > 0 {
        err := writeSidecar(item.Filepath, sidecarTags)
        log.PanicIf(err)
    }

    item.clearDirty()

    exifStoreLogger.Debugf(nil, "Committed [%s]: (%d) GPS tags, (%d) sidecar tags.", item.Filepath, len(gpsTagNames), len(sidecarTags))

    return nil
}

func (es *ExifStore) commitGpsTags(item *WorkItem, gpsTagNames []string) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    jmp := jpegstructure.NewJpegMediaParser()

    intfc, err := jmp.ParseFile(item.Filepath)
    log.PanicIf(err)

    sl := intfc.(*jpegstructure.SegmentList)

    rootIb, err := sl.ConstructExifBuilder()
    log.PanicIf(err)

    gpsIb, err := exif.GetOrCreateIbFromRootIb(rootIb, gpsIfdPath)
    log.PanicIf(err)

    for _, tag := range gpsTagNames {
        encoded, err := encodeGpsValue(item.Tags[tag])
        log.PanicIf(err)

        err = gpsIb.SetStandardWithName(tag, encoded)
        log.PanicIf(err)
    }

    err = sl.SetExif(rootIb)
    log.PanicIf(err)

    f, err := os.Create(item.Filepath)
    log.PanicIf(err)

    defer f.Close()

    err = sl.Write(f)
    log.PanicIf(err)

    return nil
}

// encodeGpsValue translates a staged value into the type go-exif expects for
// the GPS IFD.
func encodeGpsValue(value TagValue) (encoded interface{}, err error) {
    switch value.Kind {
    case TagText:
        return value.Text, nil
    case TagInteger:
        // The only integral GPS tag written here is the altitude reference,
        // which is a single byte.
        return []byte{byte(value.Integer)}, nil
    case TagRationalList:
        rationals := make([]exifcommon.Rational, len(value.Rationals))
        for i, r := range value.Rationals {
            rationals[i] = exifcommon.Rational{
                Numerator:   r.Numerator,
                Denominator: r.Denominator,
            }
        }

        return rationals, nil
    }

    log.Panicf("tag value kind (%d) can not be encoded to EXIF", value.Kind)

    // Unreachable.
    return nil, nil
}

// readExifTag scans the file's flattened EXIF data for the named tag.
func (es *ExifStore) readExifTag(filepath, tag string) (value TagValue, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    rawExif, err := exif.SearchFileAndExtractExif(filepath)
    if err != nil {
        if log.Is(err, exif.ErrNoExif) == true {
            return TagValue{}, ErrTagNotPresent
        }

        log.Panic(err)
    }

    entries, _, err := exif.GetFlatExifData(rawExif, nil)
    log.PanicIf(err)

    for _, entry := range entries {
        if entry.TagName != tag {
            continue
        }

        return decodeExifValue(tag, entry.Value)
    }

    return TagValue{}, ErrTagNotPresent
}

func decodeExifValue(tag string, raw interface{}) (value TagValue, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    switch typed := raw.(type) {
    case string:
        if tag == "DateTimeOriginal" || tag == "DateTimeDigitized" || tag == "DateTime" {
            timestamp, err := exifcommon.ParseExifFullTimestamp(typed)
            log.PanicIf(err)

            return TimestampValue(timestamp), nil
        }

        return TextValue(typed), nil
    case []exifcommon.Rational:
        rationals := make([]Rational, len(typed))
        for i, r := range typed {
            rationals[i] = Rational{
                Numerator:   r.Numerator,
                Denominator: r.Denominator,
            }
        }

        return RationalListValue(rationals), nil
    case []uint16:
        if len(typed) > 0 {
            return IntegerValue(int64(typed[0])), nil
        }
    case []uint32:
        if len(typed) > 0 {
            return IntegerValue(int64(typed[0])), nil
        }
    case []byte:
        if len(typed) > 0 {
            return IntegerValue(int64(typed[0])), nil
        }
    }

    return TagValue{}, ErrTagNotPresent
}

func readSidecar(imageFilepath string) (tags map[string]string, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    tags = make(map[string]string)

    f, err := os.Open(imageFilepath + SidecarSuffix)
    if err != nil {
        if os.IsNotExist(err) == true {
            return tags, nil
        }

        log.Panic(err)
    }

    defer f.Close()

    d := json.NewDecoder(f)

    err = d.Decode(&tags)
    log.PanicIf(err)

    return tags, nil
}

func writeSidecar(imageFilepath string, newTags map[string]string) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    // Merge over any existing sidecar rather than clobbering it.
    tags, err := readSidecar(imageFilepath)
    log.PanicIf(err)

    for tag, value := range newTags {
        tags[tag] = value
    }

    f, err := os.Create(imageFilepath + SidecarSuffix)
    log.PanicIf(err)

    defer f.Close()

    e := json.NewEncoder(f)
    e.SetIndent("", "  ")

    err = e.Encode(tags)
    log.PanicIf(err)

    return nil
}
