package geotag

import (
    "errors"
    "fmt"
    "sort"
    "time"
)

var (
    // ErrEmptyTrack is returned by operations that require at least one track
    // point. Constructing an empty track is not itself an error; callers
    // decide whether an empty track is fatal.
    ErrEmptyTrack = errors.New("track is empty")
)

// Position is a geographic point. Elevation is optional and only meaningful
// when HasElevation is set.
type Position struct {
    Latitude     float64
    Longitude    float64
    Elevation    float64
    HasElevation bool
}

func (p Position) String() string {
    if p.HasElevation == true {
        return fmt.Sprintf("Position<LAT=(%.6f) LON=(%.6f) ELV=(%.1f)>", p.Latitude, p.Longitude, p.Elevation)
    }

    return fmt.Sprintf("Position<LAT=(%.6f) LON=(%.6f)>", p.Latitude, p.Longitude)
}

// TrackPoint is one timestamped position from the recording device.
type TrackPoint struct {
    Time     time.Time
    Position Position
}

func (tp TrackPoint) String() string {
    return fmt.Sprintf("TrackPoint<TIME=[%s] %s>", tp.Time.Format(time.RFC3339), tp.Position)
}

// Track is an ordered, deduplicated sequence of track points. It is built once
// and read-only thereafter.
type Track struct {
    points []TrackPoint
}

// BuildTrack sorts the given points by timestamp and removes exact duplicates
// (same timestamp, latitude, longitude, and elevation). Zero points yield a
// valid, empty track.
func BuildTrack(points []TrackPoint) *Track {
    sorted := make([]TrackPoint, len(points))
    copy(sorted, points)

    sort.SliceStable(sorted, func(i, j int) bool {
        return sorted[i].Time.Before(sorted[j].Time)
    })

    deduped := make([]TrackPoint, 0, len(sorted))
    for i, tp := range sorted {
        if i > 0 {
            last := deduped[len(deduped)-1]
            if tp.Time.Equal(last.Time) == true && tp.Position == last.Position {
                continue
            }
        }

        deduped = append(deduped, tp)
    }

    return &Track{
        points: deduped,
    }
}

func (t *Track) Len() int {
    return len(t.points)
}

func (t *Track) IsEmpty() bool {
    return len(t.points) == 0
}

// Points returns the underlying point sequence. Callers must not modify it.
func (t *Track) Points() []TrackPoint {
    return t.points
}

// Bracket returns the track points immediately before and after the given
// timestamp. If the timestamp falls before the first point or after the last,
// both returns equal that terminal point and isBoundary is true.
func (t *Track) Bracket(timestamp time.Time) (prev, next TrackPoint, isBoundary bool, err error) {
    if len(t.points) == 0 {
        return TrackPoint{}, TrackPoint{}, false, ErrEmptyTrack
    }

    // Position of the first point with a timestamp larger than the query.
    nextPosition := sort.Search(len(t.points), func(i int) bool {
        return t.points[i].Time.After(timestamp)
    })

    if nextPosition == 0 {
        // The query precedes the whole track.

        first := t.points[0]
        return first, first, true, nil
    }

    if nextPosition >= len(t.points) {
        // The query follows the whole track (or matches the last timestamp).

        last := t.points[len(t.points)-1]
        return last, last, true, nil
    }

    return t.points[nextPosition-1], t.points[nextPosition], false, nil
}
