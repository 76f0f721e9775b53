package geotag

import (
    "github.com/dsoprea/go-logging"
    "github.com/tkrajina/gpxgo/gpx"
)

var (
    gpxLogger = log.NewLogger("geotag.gpx")
)

// LoadTrackFromGpxFiles parses the given GPX files into one sorted,
// deduplicated track. Points without timestamps are skipped; an empty result
// is valid (correlation is then disabled by the driver).
func LoadTrackFromGpxFiles(filepaths []string) (track *Track, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    points := make([]TrackPoint, 0)

    for _, filepath := range filepaths {
        gpxData, err := gpx.ParseFile(filepath)
        log.PanicIf(err)

        points = appendGpxPoints(points, gpxData)

        gpxLogger.Debugf(nil, "Loaded track file [%s].", filepath)
    }

    return BuildTrack(points), nil
}

// LoadTrackFromGpxData parses one in-memory GPX document.
func LoadTrackFromGpxData(data []byte) (track *Track, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    gpxData, err := gpx.ParseBytes(data)
    log.PanicIf(err)

    points := appendGpxPoints(make([]TrackPoint, 0), gpxData)

    return BuildTrack(points), nil
}

func appendGpxPoints(points []TrackPoint, gpxData *gpx.GPX) []TrackPoint {
    skippedCount := 0

    for _, gpxTrack := range gpxData.Tracks {
        for _, segment := range gpxTrack.Segments {
            for _, gpxPoint := range segment.Points {
                if gpxPoint.Timestamp.IsZero() == true {
                    skippedCount++
                    continue
                }

                position := Position{
                    Latitude:  gpxPoint.Latitude,
                    Longitude: gpxPoint.Longitude,
                }

                if gpxPoint.Elevation.NotNull() == true {
                    position.Elevation = gpxPoint.Elevation.Value()
                    position.HasElevation = true
                }

                points = append(points, TrackPoint{
                    Time:     gpxPoint.Timestamp.UTC(),
                    Position: position,
                })
            }
        }
    }

    if skippedCount > 0 {
        gpxLogger.Warningf(nil, "Skipped (%d) track points without timestamps.", skippedCount)
    }

    return points
}
