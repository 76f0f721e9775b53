package main

import (
    "fmt"
    "os"
    "time"

    "encoding/csv"

    "github.com/dsoprea/go-logging"
    "github.com/jessevdk/go-flags"

    "github.com/mklein-de/geotagger-mt"
)

type parameters struct {
    TrackFilepaths []string `long:"track-filepath" description:"GPX track file (can be provided more than once)" required:"true"`
}

var (
    arguments = new(parameters)
)

func main() {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            os.Exit(1)
        }
    }()

    p := flags.NewParser(arguments, flags.Default)

    _, err := p.Parse()
    if err != nil {
        os.Exit(1)
    }

    track, err := geotag.LoadTrackFromGpxFiles(arguments.TrackFilepaths)
    log.PanicIf(err)

    fmt.Fprintf(os.Stderr, "Points: (%d)\n", track.Len())

    // Dump contents.

    c := csv.NewWriter(os.Stdout)

    err = c.Write([]string{"Time", "Latitude", "Longitude", "Elevation"})
    log.PanicIf(err)

    for _, tp := range track.Points() {
        elevationPhrase := ""
        if tp.Position.HasElevation == true {
            elevationPhrase = fmt.Sprintf("%.1f", tp.Position.Elevation)
        }

        record := []string{
            tp.Time.Format(time.RFC3339),
            fmt.Sprintf("%.6f", tp.Position.Latitude),
            fmt.Sprintf("%.6f", tp.Position.Longitude),
            elevationPhrase,
        }

        err := c.Write(record)
        log.PanicIf(err)
    }

    c.Flush()

    err = c.Error()
    log.PanicIf(err)
}

func init() {
    scp := log.NewStaticConfigurationProvider()
    scp.SetLevelName(log.LevelNameError)

    log.LoadConfiguration(scp)

    cla := log.NewConsoleLogAdapter()
    log.AddAdapter("console", cla)
}
