package geotag

import (
    "math"
    "testing"
)

func TestHaversineDistance_Coincident(t *testing.T) {
    p := Position{
        Latitude:  41.85003,
        Longitude: -87.65005,
    }

    d := HaversineDistance(p, p)

    if d != 0 {
        t.Fatalf("Distance between coincident points is not zero: (%.6f)", d)
    }
}

func TestHaversineDistance_Symmetric(t *testing.T) {
    chicago := Position{
        Latitude:  41.85003,
        Longitude: -87.65005,
    }

    detroit := Position{
        Latitude:  42.33143,
        Longitude: -83.04575,
    }

    forward := HaversineDistance(chicago, detroit)
    backward := HaversineDistance(detroit, chicago)

    if math.Abs(forward-backward) > 1e-6 {
        t.Fatalf("Distance is not symmetric: (%.6f) != (%.6f)", forward, backward)
    }

    if forward <= 0 {
        t.Fatalf("Distance between distinct points is not positive: (%.6f)", forward)
    }
}

func TestHaversineDistance_OneDegreeAtEquator(t *testing.T) {
    a := Position{
        Latitude:  0,
        Longitude: 0,
    }

    b := Position{
        Latitude:  0,
        Longitude: 1,
    }

    d := HaversineDistance(a, b)

    expected := 111195.0
    if math.Abs(d-expected) > 50 {
        t.Fatalf("One degree of longitude at the equator is not correct: (%.1f) != (%.1f)", d, expected)
    }
}

func TestHaversineDistance_MonotonicInSeparation(t *testing.T) {
    origin := Position{
        Latitude:  0,
        Longitude: 0,
    }

    lastDistance := 0.0
    for i := 1; i <= 10; i++ {
        p := Position{
            Latitude:  0,
            Longitude: float64(i),
        }

        d := HaversineDistance(origin, p)
        if d <= lastDistance {
            t.Fatalf("Distance is not monotonic in angular separation at (%d) degrees: (%.1f) <= (%.1f)", i, d, lastDistance)
        }

        lastDistance = d
    }
}
