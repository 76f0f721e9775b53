package geotag

import (
    "time"
)

const (
    // DefaultMaxTimeDelta is the default largest time separation that still
    // correlates a photo with the track.
    DefaultMaxTimeDelta = time.Minute * 10

    // DefaultMaxPointDistance is the default largest distance, in meters,
    // between two bracketing track points that still correlates a photo
    // falling between them.
    DefaultMaxPointDistance = 1000.0

    // DefaultQueueDepth is the capacity of every stage input queue. It bounds
    // how far any stage can run ahead of a stalled downstream neighbor.
    DefaultQueueDepth = 8
)

const (
    // DefaultGeonamesUrl is the public endpoint of the place-lookup service.
    DefaultGeonamesUrl = "http://api.geonames.org"
)
