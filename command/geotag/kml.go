package main

import (
    "fmt"
    "os"
    "path"

    "encoding/xml"

    "github.com/dsoprea/go-logging"
    "github.com/twpayne/go-kml"

    "github.com/mklein-de/geotagger-mt"
)

// writeResultsAsKml writes one placemark per resolved image.
func writeResultsAsKml(items []*geotag.WorkItem, filepath string) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    elements := make([]kml.Element, 0)
    for _, item := range items {
        if item.Position == nil {
            continue
        }

        var elevation float64
        if item.Position.HasElevation == true {
            elevation = item.Position.Elevation
        }

        coordinate := kml.Coordinate{
            Lon: item.Position.Longitude,
            Lat: item.Position.Latitude,
            Alt: elevation,
        }

        taken := geotag.GetCondensedDatetime(item.Timestamp)
        if item.CameraModel != "" {
            taken = fmt.Sprintf("%s (%s)", taken, item.CameraModel)
        }

        description := placePhrase(item)
        if description == "" {
            description = taken
        } else {
            description = fmt.Sprintf("%s; %s", description, taken)
        }

        imagePoint := kml.Placemark(
            kml.Name(path.Base(item.Filepath)),
            kml.Description(description),
            kml.Point(
                kml.Coordinates(coordinate),
            ),
        )

        elements = append(elements, imagePoint)
    }

    k := kml.KML(
        kml.Document(
            elements...,
        ),
    )

    // Render the XML.

    f, err := os.Create(filepath)
    log.PanicIf(err)

    defer f.Close()

    e := xml.NewEncoder(f)
    e.Indent("", "  ")

    err = e.Encode(k)
    log.PanicIf(err)

    return nil
}

// placePhrase condenses whichever place fields were resolved into one display
// string.
func placePhrase(item *geotag.WorkItem) string {
    city := item.Result[geotag.ResultFieldCity]
    provinceState := item.Result[geotag.ResultFieldProvinceState]
    countryName := item.Result[geotag.ResultFieldCountryName]

    phrase := ""
    for _, part := range []string{city, provinceState, countryName} {
        if part == "" {
            continue
        }

        if phrase == "" {
            phrase = part
        } else {
            phrase = fmt.Sprintf("%s, %s", phrase, part)
        }
    }

    return phrase
}
