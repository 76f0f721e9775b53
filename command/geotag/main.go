package main

import (
    "fmt"
    "os"
    "time"

    "os/signal"

    "github.com/dsoprea/go-logging"
    "github.com/jessevdk/go-flags"
    "github.com/sbwhitecap/tqdm"
    "github.com/sbwhitecap/tqdm/iterators"

    "github.com/mklein-de/geotagger-mt"
)

var (
    mainLogger = log.NewLogger("main")
)

// trackParameters locate the recorded GPS data.
type trackParameters struct {
    TrackFilepaths []string `long:"track-filepath" description:"GPX track file (can be provided more than once)"`
}

// imageParameters locate the photos to tag.
type imageParameters struct {
    ImagePaths     []string `long:"image-path" description:"Path to scan for images to tag (can be provided more than once)" required:"true"`
    TimestampSkew  int      `long:"timestamp-skew" description:"Camera clock skew to subtract, in seconds"`
    TimeOffset     int      `long:"time-offset" description:"Fixed offset to add to every photo timestamp, in seconds"`
    LocalTime      bool     `long:"local-time" description:"Camera timestamps are local to the track's starting position; resolve its timezone and convert"`
    CameraModels   []string `long:"camera-model" description:"Only tag images from this camera model (can be provided more than once)"`
    TraceFilepaths []string `long:"trace-filepath" description:"Collect per-file diagnostics for this image (can be provided more than once)"`
}

// correlationParameters govern how a photo timestamp maps to a track
// position.
type correlationParameters struct {
    MatchPolicy      string  `long:"match-policy" description:"How to pick a position between the bracketing track points" default:"average" choice:"average" choice:"nearest" choice:"next" choice:"prev"`
    Satisfy          string  `long:"satisfy" description:"Whether one or both thresholds must hold" default:"any" choice:"any" choice:"all"`
    MaxTimeDelta     int     `long:"max-time-delta" description:"Largest acceptable time separation, in seconds" default:"600"`
    MaxPointDistance float64 `long:"max-point-distance" description:"Largest acceptable distance between the bracketing track points, in meters" default:"1000"`
    Overwrite        bool    `long:"overwrite" description:"Correlate even if the image already has a position"`
}

// geocodeParameters configure the place lookup. The remote service is used
// when a username is given; the offline city index when its data files are
// given.
type geocodeParameters struct {
    GeonamesUsername  string  `long:"geonames-username" description:"Username for the GeoNames web service"`
    GeonamesUrl       string  `long:"geonames-url" description:"Base URL of the GeoNames web service"`
    ThrottleRate      float64 `long:"throttle-rate" description:"Maximum place lookups per hour (0 for unthrottled)"`
    CountriesFilepath string  `long:"countries-filepath" description:"File-path of the GeoNames countries data for offline lookups (usually called 'countryInfo.txt')"`
    CitiesFilepath    string  `long:"cities-filepath" description:"File-path of the GeoNames world-cities data for offline lookups (usually called 'allCountries.txt')"`
    CityDbFilepath    string  `long:"city-db-filepath" description:"File-path of the offline city database. Will be created if it does not exist."`
    NoGeocode         bool    `long:"no-geocode" description:"Skip place resolution entirely"`
}

// outputParameters govern the processing outputs.
type outputParameters struct {
    AugmentFilepath string `long:"augment-filepath" description:"CSV of prior-run rows to merge into the images before tagging"`
    ReportFilepath  string `long:"report-filepath" description:"Write a CSV result row per image to the given file"`
    KmlFilepath     string `long:"kml-filepath" description:"Write KML of the resolved positions to the given file"`
    CatalogPath     string `long:"catalog-path" description:"Write an HTML catalog of the tagged images into this path"`
    DryRun          bool   `long:"dry-run" description:"Do not write metadata back to the images"`
    QueueDepth      int    `long:"queue-depth" description:"Stage input-queue capacity" default:"8"`
    PrintStats      bool   `long:"stats" description:"Print statistics"`
    NoProgress      bool   `long:"no-progress" description:"Don't print submission progress"`
}

type tagParameters struct {
    trackParameters
    imageParameters
    correlationParameters
    geocodeParameters
    outputParameters
}

type subcommands struct {
    Tag tagParameters `command:"tag" description:"Correlate, geocode, and write"`
}

var (
    rootArguments = new(subcommands)
)

// getPlaceSource picks the place-lookup collaborator: the offline city index
// when its data files were given, else the remote service.
func getPlaceSource(tagArguments tagParameters) (source geotag.PlaceSource) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.Panic(err)
        }
    }()

    if tagArguments.NoGeocode == true {
        return nil
    }

    if tagArguments.CountriesFilepath != "" && tagArguments.CitiesFilepath != "" {
        ci, err := geotag.GetCityIndex(tagArguments.CityDbFilepath, tagArguments.CountriesFilepath, tagArguments.CitiesFilepath)
        log.PanicIf(err)

        return geotag.NewCityIndexPlaceSource(ci)
    }

    if tagArguments.GeonamesUsername != "" {
        return geotag.NewGeonamesClient(tagArguments.GeonamesUrl, tagArguments.GeonamesUsername)
    }

    mainLogger.Warningf(nil, "No place-lookup collaborator configured; geocoding disabled.")

    return nil
}

// getTimestampAdjuster composes the clock-skew, fixed-offset, and local-time
// corrections into one timestamp conversion.
func getTimestampAdjuster(tagArguments tagParameters, track *geotag.Track, source geotag.PlaceSource) (adjuster func(time.Time) time.Time) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.Panic(err)
        }
    }()

    offset := time.Duration(tagArguments.TimeOffset) * time.Second

    var location *time.Location
    if tagArguments.LocalTime == true {
        if track.IsEmpty() == true {
            log.Panicf("the local-time conversion requires a non-empty track")
        } else if source == nil {
            log.Panicf("the local-time conversion requires a place-lookup collaborator")
        }

        first := track.Points()[0]

        timezoneId, err := source.Timezone(first.Position.Latitude, first.Position.Longitude)
        log.PanicIf(err)

        location, err = time.LoadLocation(timezoneId)
        log.PanicIf(err)

        mainLogger.Infof(nil, "Camera timestamps will be read as [%s] local time.", timezoneId)
    }

    return func(t time.Time) time.Time {
        t = t.Add(offset)

        if location != nil {
            t = geotag.ReinterpretInLocation(t, location)
        }

        return t
    }
}

func handleTag(tagArguments tagParameters) {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.Panic(err)
        }
    }()

    if len(tagArguments.TraceFilepaths) > 0 {
        geotag.InitItemTrace(tagArguments.TraceFilepaths)
    }

    // Load the track.

    track, err := geotag.LoadTrackFromGpxFiles(tagArguments.TrackFilepaths)
    log.PanicIf(err)

    if track.IsEmpty() == true {
        mainLogger.Warningf(nil, "Track is empty; correlation will be skipped.")
    } else if tagArguments.PrintStats == true {
        fmt.Printf("(%d) track points loaded.\n", track.Len())
    }

    place := getPlaceSource(tagArguments)

    // Enumerate the photos, time-ordered.

    skew := time.Duration(tagArguments.TimestampSkew) * time.Second

    imageIndex, err := geotag.GetImageTimeIndex(tagArguments.ImagePaths, skew, tagArguments.CameraModels)
    log.PanicIf(err)

    adjuster := getTimestampAdjuster(tagArguments, track, place)

    items := geotag.BuildWorkItems(imageIndex.Series(), adjuster)

    if tagArguments.PrintStats == true {
        fmt.Printf("(%d) images loaded.\n", len(items))
    }

    // Assemble the chain: augment, correlate, geocode, write. Each of the
    // first three is optional; the writer is always present.

    var store geotag.MetadataStore
    if tagArguments.DryRun == true {
        store = geotag.NewMemoryStore()
    } else {
        store = geotag.NewExifStore()
    }

    queueDepth := tagArguments.QueueDepth

    stages := make([]*geotag.Stage, 0)

    if tagArguments.AugmentFilepath != "" {
        f, err := os.Open(tagArguments.AugmentFilepath)
        log.PanicIf(err)

        augmentIndex, err := geotag.LoadAugmentIndex(f)
        f.Close()
        log.PanicIf(err)

        stages = append(stages, geotag.NewAugmentStage(augmentIndex, store, queueDepth))
    }

    if track.IsEmpty() == false {
        correlator := geotag.NewCorrelator(
            track,
            tagArguments.MatchPolicy,
            tagArguments.Satisfy,
            time.Duration(tagArguments.MaxTimeDelta)*time.Second,
            tagArguments.MaxPointDistance)

        stages = append(stages, geotag.NewCorrelateStage(correlator, store, tagArguments.Overwrite, queueDepth))
    }

    if place != nil {
        resolver := geotag.NewLocationResolver(place, geotag.DefaultLocalityFieldTable(), tagArguments.ThrottleRate)

        stages = append(stages, geotag.NewGeocodeStage(resolver, store, queueDepth))
    }

    var report *geotag.ReportWriter
    if tagArguments.ReportFilepath != "" {
        f, err := os.Create(tagArguments.ReportFilepath)
        log.PanicIf(err)

        defer f.Close()

        report, err = geotag.NewReportWriter(f)
        log.PanicIf(err)
    }

    collected := make([]*geotag.WorkItem, 0, len(items))
    sink := func(item *geotag.WorkItem) {
        collected = append(collected, item)
    }

    stages = append(stages, geotag.NewWriteStage(store, report, sink, queueDepth))

    p := geotag.NewPipeline(stages...)
    p.Run()

    // Submit. An interrupt stops further submission; the sentinel still goes
    // in and the chain drains whatever is already queued.

    interruptC := make(chan os.Signal, 1)
    signal.Notify(interruptC, os.Interrupt)

    interrupted := false

    submitOne := func(item *geotag.WorkItem) (stop bool) {
        select {
        case <-interruptC:
            mainLogger.Warningf(nil, "Interrupted; no further images will be submitted.")
            return true
        default:
        }

        p.Submit(item)

        return false
    }

    if tagArguments.NoProgress == true {
        for _, item := range items {
            if submitOne(item) == true {
                interrupted = true
                break
            }
        }
    } else {
        tqdm.With(iterators.Interval(0, len(items)), "Tagging", func(v interface{}) (brk bool) {
            i := v.(int)

            if submitOne(items[i]) == true {
                interrupted = true
                return true
            }

            return false
        })
    }

    signal.Stop(interruptC)

    p.Shutdown()
    p.Wait()

    if report != nil {
        err := report.Flush()
        log.PanicIf(err)
    }

    // Post-run outputs.

    if tagArguments.KmlFilepath != "" {
        err := writeResultsAsKml(collected, tagArguments.KmlFilepath)
        log.PanicIf(err)
    }

    if tagArguments.CatalogPath != "" {
        err := writeTaggedCatalog(collected, tagArguments.CatalogPath)
        log.PanicIf(err)
    }

    if geotag.IsItemTraceInited() == true {
        fmt.Printf("\n")
        fmt.Printf("Traces\n")
        fmt.Printf("======\n")

        for filepath, comments := range geotag.ItemTraceIndex() {
            fmt.Printf("%s\n", filepath)

            for _, comment := range comments {
                fmt.Printf("  %s\n", comment)
            }
        }
    }

    if tagArguments.PrintStats == true {
        fmt.Printf("\n")

        for _, stage := range p.Stages() {
            fmt.Printf("Stage [%s]: (%d) processed, (%d) dropped.\n", stage.Name(), stage.ProcessedCount(), stage.DroppedCount())
        }

        if interrupted == true {
            fmt.Printf("\nThe run was interrupted before all images were submitted.\n")
        }
    }
}

func main() {
    defer func() {
        if state := recover(); state != nil {
            err := log.Wrap(state.(error))
            log.PrintError(err)
            os.Exit(-1)
        }
    }()

    p := flags.NewParser(rootArguments, flags.Default)

    _, err := p.Parse()
    if err != nil {
        os.Exit(1)
    }

    switch p.Active.Name {
    case "tag":
        handleTag(rootArguments.Tag)
    default:
        fmt.Printf("Subcommand not handled: [%s]\n", p.Active.Name)
        os.Exit(2)
    }
}

func init() {
    scp := log.NewStaticConfigurationProvider()
    scp.SetLevelName(log.LevelNameError)

    log.LoadConfiguration(scp)

    cla := log.NewConsoleLogAdapter()
    log.AddAdapter("console", cla)
}
