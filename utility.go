package geotag

import (
    "fmt"
    "time"

    "github.com/dsoprea/go-geographic-index"
    "github.com/dsoprea/go-logging"
    "github.com/dsoprea/go-time-index"
)

// GetImageTimeIndex scans the given paths for images and loads them into a
// time-ordered index.
func GetImageTimeIndex(paths []string, imageTimestampSkew time.Duration, cameraModels []string) (ti *geoindex.TimeIndex, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
            log.Panic(err)
        }
    }()

    ti = geoindex.NewTimeIndex()
    gc := geoindex.NewGeographicCollector(ti, nil)

    err = geoindex.RegisterImageFileProcessors(gc, imageTimestampSkew, cameraModels)
    log.PanicIf(err)

    for _, scanPath := range paths {
        err := gc.ReadFromPath(scanPath)
        log.PanicIf(err)
    }

    return ti, nil
}

// BuildWorkItems turns a time-ordered image index into the driver's
// submission list, applying the camera clock adjustment to every timestamp.
// Images that already carry a geographic position keep it (the correlate
// stage's skip pre-check acts on this).
func BuildWorkItems(ts timeindex.TimeSlice, adjustTimestamp func(time.Time) time.Time) (items []*WorkItem) {
    items = make([]*WorkItem, 0)

    for _, te := range ts {
        for _, indexItem := range te.Items {
            gr := indexItem.(*geoindex.GeographicRecord)

            timestamp := te.Time
            if adjustTimestamp != nil {
                timestamp = adjustTimestamp(timestamp)
            }

            wi := NewWorkItem(gr.Filepath, timestamp)

            if im, ok := gr.Metadata.(geoindex.ImageMetadata); ok == true {
                wi.CameraModel = im.CameraModel
            }

            if gr.HasGeographic == true {
                wi.Position = &Position{
                    Latitude:  gr.Latitude,
                    Longitude: gr.Longitude,
                }
            }

            items = append(items, wi)
        }
    }

    return items
}

// ReinterpretInLocation re-reads a timestamp's wall-clock fields as local time
// in the given zone and returns the equivalent UTC instant. Camera timestamps
// parse as UTC even though the clock ran on local time; this undoes that.
func ReinterpretInLocation(t time.Time, location *time.Location) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), location).UTC()
}

// GetCondensedDatetime returns a timestamp string in whatever timezone the
// input value is.
func GetCondensedDatetime(t time.Time) string {
    return fmt.Sprintf("%d%02d%02d-%02d%02d%02d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}
