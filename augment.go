package geotag

import (
    "io"
    "strconv"

    "encoding/csv"

    "github.com/dsoprea/go-logging"
)

var (
    augmentLogger = log.NewLogger("geotag.augment")
)

// AugmentRow is one prior-run row: a subset of the result columns, keyed by
// column name. Absent columns leave the item untouched.
type AugmentRow map[string]string

// AugmentIndex maps item identities to their augmentation rows.
type AugmentIndex map[string]AugmentRow

// LoadAugmentIndex reads a headered CSV whose "File" column keys the rows.
// Empty cells are treated as absent.
func LoadAugmentIndex(r io.Reader) (index AugmentIndex, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    c := csv.NewReader(r)

    c.Comment = '#'

    header, err := c.Read()
    if err != nil {
        if err == io.EOF {
            return make(AugmentIndex), nil
        }

        log.Panic(err)
    }

    fileColumn := -1
    for i, name := range header {
        if name == ResultFieldFile {
            fileColumn = i
            break
        }
    }

    if fileColumn == -1 {
        log.Panicf("augmentation input does not have a [%s] column", ResultFieldFile)
    }

    index = make(AugmentIndex)

    for {
        record, err := c.Read()
        if err != nil {
            if err == io.EOF {
                break
            }

            log.Panic(err)
        }

        row := make(AugmentRow)
        for i, value := range record {
            if i == fileColumn || value == "" {
                continue
            }

            row[header[i]] = value
        }

        index[record[fileColumn]] = row
    }

    augmentLogger.Debugf(nil, "Loaded (%d) augmentation rows.", len(index))

    return index, nil
}

// NewAugmentStage merges prior-run rows into items before any other stage
// sees them. A malformed numeric cell is a per-item fault.
func NewAugmentStage(index AugmentIndex, store MetadataStore, queueDepth int) *Stage {
    transform := func(item *WorkItem) (forward *WorkItem, err error) {
        defer func() {
            if state := recover(); state != nil {
                err = log.Wrap(state.(error))
            }
        }()

        row, found := index[item.Filepath]
        if found == false {
            return item, nil
        }

        latitudeRaw, hasLatitude := row[ResultFieldLatitude]
        longitudeRaw, hasLongitude := row[ResultFieldLongitude]

        if hasLatitude == true && hasLongitude == true {
            latitude, err := strconv.ParseFloat(latitudeRaw, 64)
            log.PanicIf(err)

            longitude, err := strconv.ParseFloat(longitudeRaw, 64)
            log.PanicIf(err)

            position := Position{
                Latitude:  latitude,
                Longitude: longitude,
            }

            if elevationRaw, hasElevation := row[ResultFieldElevation]; hasElevation == true {
                elevation, err := strconv.ParseFloat(elevationRaw, 64)
                log.PanicIf(err)

                position.Elevation = elevation
                position.HasElevation = true
            }

            item.Position = &position

            setPositionTags(store, item, position)

            PushDebugTrace(item.Filepath, "Position taken from augmentation input.")
        }

        for _, field := range []string{ResultFieldCity, ResultFieldProvinceState, ResultFieldCountryName} {
            if value, has := row[field]; has == true {
                store.Set(item, field, TextValue(value))
                item.SetResult(field, value)
            }
        }

        return item, nil
    }

    return NewStage("augment", queueDepth, transform)
}
