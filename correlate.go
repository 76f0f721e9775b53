package geotag

import (
    "errors"
    "fmt"
    "math"
    "time"

    "github.com/dsoprea/go-logging"
)

var (
    // ErrNoMatch indicates that the track carries no position that satisfies
    // the configured thresholds for the queried timestamp. It is a normal
    // outcome, not a fault.
    ErrNoMatch = errors.New("no track position correlates with the timestamp")
)

const (
    // MatchPolicyAverage interpolates linearly between the bracketing points.
    MatchPolicyAverage = "average"

    // MatchPolicyNearest takes whichever bracketing point is temporally
    // closer.
    MatchPolicyNearest = "nearest"

    // MatchPolicyNext takes the bracketing point at or after the timestamp.
    MatchPolicyNext = "next"

    // MatchPolicyPrev takes the bracketing point before the timestamp.
    MatchPolicyPrev = "prev"
)

const (
    // SatisfyAny accepts a match when either the distance or the time
    // threshold holds.
    SatisfyAny = "any"

    // SatisfyAll requires both thresholds to hold.
    SatisfyAll = "all"
)

var (
    correlateLogger = log.NewLogger("geotag.correlate")
)

// Match is a successful correlation. Distance is the separation of the two
// bracketing track points (zero at track boundaries), not the separation of
// the result from anything.
type Match struct {
    Position Position
    Distance float64
    Delta    time.Duration
}

func (m Match) String() string {
    return fmt.Sprintf("Match<%s DISTANCE=(%.1f) DELTA=[%s]>", m.Position, m.Distance, m.Delta)
}

// Correlator maps a query timestamp to a position on a track under one match
// policy and one satisfy mode. It is read-only after construction.
type Correlator struct {
    track       *Track
    policy      string
    satisfy     string
    maxDelta    time.Duration
    maxDistance float64
}

func NewCorrelator(track *Track, policy, satisfy string, maxDelta time.Duration, maxDistance float64) *Correlator {
    if policy != MatchPolicyAverage && policy != MatchPolicyNearest && policy != MatchPolicyNext && policy != MatchPolicyPrev {
        log.Panicf("match policy [%s] not valid", policy)
    }

    if satisfy != SatisfyAny && satisfy != SatisfyAll {
        log.Panicf("satisfy mode [%s] not valid", satisfy)
    }

    return &Correlator{
        track:       track,
        policy:      policy,
        satisfy:     satisfy,
        maxDelta:    maxDelta,
        maxDistance: maxDistance,
    }
}

// Locate resolves the given timestamp against the track. It returns ErrNoMatch
// when the thresholds are not satisfied and ErrEmptyTrack when the track has
// no points at all.
func (c *Correlator) Locate(timestamp time.Time) (match Match, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    prev, next, isBoundary, err := c.track.Bracket(timestamp)
    if err != nil {
        return Match{}, err
    }

    var distance float64
    if isBoundary == false {
        distance = HaversineDistance(prev.Position, next.Position)
    }

    var position Position
    var delta time.Duration

    switch c.policy {
    case MatchPolicyNearest:
        untilNext := next.Time.Sub(timestamp)
        sincePrev := timestamp.Sub(prev.Time)

        if absDuration(sincePrev) <= absDuration(untilNext) {
            position = prev.Position
            delta = absDuration(sincePrev)
        } else {
            position = next.Position
            delta = absDuration(untilNext)
        }
    case MatchPolicyNext:
        position = next.Position
        delta = next.Time.Sub(timestamp)
    case MatchPolicyPrev:
        position = prev.Position
        delta = timestamp.Sub(prev.Time)
    case MatchPolicyAverage:
        interval := next.Time.Sub(prev.Time)

        if isBoundary == true || interval == 0 {
            // The weight is irrelevant at the boundary; both points coincide.
            position = prev.Position
        } else {
            w := float64(timestamp.Sub(prev.Time)) / float64(interval)

            position = Position{
                Latitude:  prev.Position.Latitude + (next.Position.Latitude-prev.Position.Latitude)*w,
                Longitude: prev.Position.Longitude + (next.Position.Longitude-prev.Position.Longitude)*w,
            }

            // Elevation is interpolated only when both bracketing points
            // carry one.
            if prev.Position.HasElevation == true && next.Position.HasElevation == true {
                position.Elevation = prev.Position.Elevation + (next.Position.Elevation-prev.Position.Elevation)*w
                position.HasElevation = true
            }
        }

        // The whole bracketing interval, independent of where the timestamp
        // falls within it.
        delta = interval
    }

    // Do not simplify: for "any" this reduces to a plain OR, but "all" gates
    // both thresholds, and the asymmetric form is deliberate.
    valid := (c.satisfy != SatisfyAll && (distance <= c.maxDistance || delta <= c.maxDelta)) || (distance <= c.maxDistance && delta <= c.maxDelta)

    if valid == false {
        return Match{}, ErrNoMatch
    }

    match = Match{
        Position: position,
        Distance: distance,
        Delta:    delta,
    }

    return match, nil
}

func absDuration(d time.Duration) time.Duration {
    if d < 0 {
        return -d
    }

    return d
}

// GPS tag names understood by the EXIF-backed store.
const (
    TagGpsLatitude     = "GPSLatitude"
    TagGpsLatitudeRef  = "GPSLatitudeRef"
    TagGpsLongitude    = "GPSLongitude"
    TagGpsLongitudeRef = "GPSLongitudeRef"
    TagGpsAltitude     = "GPSAltitude"
    TagGpsAltitudeRef  = "GPSAltitudeRef"
)

// DegreesToRationals encodes a decimal coordinate as the degree/minute/second
// rational triplet used by the GPS IFD. The sign is dropped; it travels in the
// reference tag.
func DegreesToRationals(decimal float64) []Rational {
    decimal = math.Abs(decimal)

    degrees := math.Floor(decimal)
    minutes := math.Floor((decimal - degrees) * 60)
    seconds := (decimal - degrees - minutes/60) * 3600

    return []Rational{
        {Numerator: uint32(degrees), Denominator: 1},
        {Numerator: uint32(minutes), Denominator: 1},
        {Numerator: uint32(math.Round(seconds * 100)), Denominator: 100},
    }
}

// setPositionTags stages the GPS tags for the given position on the item.
func setPositionTags(store MetadataStore, item *WorkItem, position Position) {
    latitudeRef := "N"
    if position.Latitude < 0 {
        latitudeRef = "S"
    }

    longitudeRef := "E"
    if position.Longitude < 0 {
        longitudeRef = "W"
    }

    store.Set(item, TagGpsLatitude, RationalListValue(DegreesToRationals(position.Latitude)))
    store.Set(item, TagGpsLatitudeRef, TextValue(latitudeRef))
    store.Set(item, TagGpsLongitude, RationalListValue(DegreesToRationals(position.Longitude)))
    store.Set(item, TagGpsLongitudeRef, TextValue(longitudeRef))

    if position.HasElevation == true {
        altitudeRef := int64(0)

        altitude := position.Elevation
        if altitude < 0 {
            altitude = -altitude
            altitudeRef = 1
        }

        store.Set(item, TagGpsAltitude, RationalListValue([]Rational{{Numerator: uint32(math.Round(altitude * 10)), Denominator: 10}}))
        store.Set(item, TagGpsAltitudeRef, IntegerValue(altitudeRef))
    }
}

// NewCorrelateStage wraps the correlator in a pipeline stage. Items that
// already carry a position pass through untouched unless overwrite is set, and
// a non-match is a pass-through, not a fault.
func NewCorrelateStage(correlator *Correlator, store MetadataStore, overwrite bool, queueDepth int) *Stage {
    transform := func(item *WorkItem) (forward *WorkItem, err error) {
        defer func() {
            if state := recover(); state != nil {
                err = log.Wrap(state.(error))
            }
        }()

        if item.Position != nil && overwrite == false {
            PushDebugTrace(item.Filepath, "Already positioned; correlation skipped.")
            return item, nil
        }

        match, err := correlator.Locate(item.Timestamp)
        if err != nil {
            if log.Is(err, ErrNoMatch) == true {
                PushWarningTrace(item.Filepath, fmt.Sprintf("No track match for [%s].", item.Timestamp.Format(time.RFC3339)))
                return item, nil
            }

            log.Panic(err)
        }

        position := match.Position
        item.Position = &position

        setPositionTags(store, item, position)

        correlateLogger.Debugf(nil, "Correlated [%s]: %s", item.Filepath, match)

        return item, nil
    }

    return NewStage("correlate", queueDepth, transform)
}
