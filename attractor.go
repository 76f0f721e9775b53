package geotag

import (
    "github.com/dsoprea/go-logging"

    "github.com/dsoprea/go-geographic-attractor/index"
    "github.com/dsoprea/go-geographic-attractor/parse"
)

// GetCityIndex loads the GeoNames city data into an attractor index for
// offline place lookups.
func GetCityIndex(kvFilepath, countriesFilepath, citiesFilepath string) (ci *geoattractorindex.CityIndex, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
            log.Panic(err)
        }
    }()

    gp, err := geoattractorparse.NewGeonamesParserWithFiles(countriesFilepath)
    log.PanicIf(err)

    f, err := geoattractorparse.GetCitydataReadCloser(citiesFilepath)
    log.PanicIf(err)

    defer f.Close()

    ci = geoattractorindex.NewCityIndex(
        kvFilepath,
        geoattractorindex.DefaultMinimumLevelForUrbanCenterAttraction,
        geoattractorindex.DefaultUrbanCenterMinimumPopulation)

    err = ci.Load(gp, f, nil, nil)
    log.PanicIf(err)

    return ci, nil
}

// CityIndexPlaceSource adapts the offline city index to the place-lookup
// collaborator interface. The index deals in country display names rather
// than codes, so the name doubles as the code and CountryName is the
// identity.
type CityIndexPlaceSource struct {
    index *geoattractorindex.CityIndex
}

func NewCityIndexPlaceSource(index *geoattractorindex.CityIndex) *CityIndexPlaceSource {
    return &CityIndexPlaceSource{
        index: index,
    }
}

func (cips *CityIndexPlaceSource) Location(latitude, longitude float64) (detail *PlaceDetail, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    _, _, cr, err := cips.index.Nearest(latitude, longitude, false)
    if err != nil {
        if log.Is(err, geoattractorindex.ErrNoNearestCity) == true {
            return nil, ErrNoPlaceFound
        }

        log.Panic(err)
    }

    fields := map[string]string{
        "name":        cr.City,
        "adminName1":  cr.ProvinceState,
        "countryName": cr.Country,
    }

    detail = &PlaceDetail{
        CountryCode: cr.Country,
        Fields:      fields,
    }

    return detail, nil
}

func (cips *CityIndexPlaceSource) CountryName(countryCode string) (name string, err error) {
    return countryCode, nil
}

func (cips *CityIndexPlaceSource) Timezone(latitude, longitude float64) (timezoneId string, err error) {
    return "", ErrTimezoneNotAvailable
}
