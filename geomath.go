package geotag

import (
    "math"
)

const (
    // EarthRadiusMeters is the fixed sphere radius used for all great-circle
    // calculations.
    EarthRadiusMeters = 6371000.0
)

// HaversineDistance returns the great-circle distance between the two
// positions, in meters. It is symmetric and zero for coincident positions.
// Elevation does not participate.
func HaversineDistance(a, b Position) float64 {
    aLatRadians := a.Latitude * math.Pi / 180
    bLatRadians := b.Latitude * math.Pi / 180

    deltaLatRadians := (b.Latitude - a.Latitude) * math.Pi / 180
    deltaLonRadians := (b.Longitude - a.Longitude) * math.Pi / 180

    sinLat := math.Sin(deltaLatRadians / 2)
    sinLon := math.Sin(deltaLonRadians / 2)

    h := sinLat*sinLat + math.Cos(aLatRadians)*math.Cos(bLatRadians)*sinLon*sinLon
    c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

    return EarthRadiusMeters * c
}
