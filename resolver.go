package geotag

import (
    "context"
    "errors"
    "fmt"

    "github.com/dsoprea/go-logging"
    "golang.org/x/time/rate"
)

var (
    // ErrNoPlaceFound indicates that the place-lookup collaborator has no
    // record near the queried position.
    ErrNoPlaceFound = errors.New("no place found near position")

    // ErrTimezoneNotAvailable indicates that the place source can not resolve
    // timezones.
    ErrTimezoneNotAvailable = errors.New("timezone lookup not available")
)

var (
    resolverLogger = log.NewLogger("geotag.resolver")
)

// PlaceDetail is the raw response of the place-lookup collaborator: the ISO
// country code plus whatever locality fields the service returned.
type PlaceDetail struct {
    CountryCode string
    Fields      map[string]string
}

// PlaceSource is the external place-lookup collaborator.
type PlaceSource interface {
    Location(latitude, longitude float64) (detail *PlaceDetail, err error)
    CountryName(countryCode string) (name string, err error)
    Timezone(latitude, longitude float64) (timezoneId string, err error)
}

// PlaceInfo is a resolved place: the city-equivalent and province-equivalent
// fields selected by the locality-field table, plus the country display name.
type PlaceInfo struct {
    City          string
    ProvinceState string
    CountryName   string
    CountryCode   string
}

func (pi PlaceInfo) String() string {
    return fmt.Sprintf("PlaceInfo<CITY=[%s] PROVINCE=[%s] COUNTRY=[%s]>", pi.City, pi.ProvinceState, pi.CountryName)
}

type positionKey struct {
    latitude  float64
    longitude float64
}

// LocationResolver caches and rate-limits calls to the place-lookup
// collaborator. All of its state is owned by the single geocode-stage worker,
// so no locking is needed.
type LocationResolver struct {
    source PlaceSource
    fields *LocalityFieldTable

    // limiter paces outbound calls; nil means unthrottled. Cache hits never
    // touch it.
    limiter *rate.Limiter

    locationCache map[positionKey]*PlaceDetail
    countryCache  map[string]string

    lookupCount int
}

// NewLocationResolver builds a resolver pacing outbound calls to at most
// throttleRate requests per hour. A rate of zero or less disables throttling.
func NewLocationResolver(source PlaceSource, fields *LocalityFieldTable, throttleRate float64) *LocationResolver {
    var limiter *rate.Limiter
    if throttleRate > 0 {
        // A burst of one: the first call goes out immediately, every later
        // call waits out the 3600/throttleRate pacing interval.
        limiter = rate.NewLimiter(rate.Limit(throttleRate/3600.0), 1)
    }

    return &LocationResolver{
        source:        source,
        fields:        fields,
        limiter:       limiter,
        locationCache: make(map[positionKey]*PlaceDetail),
        countryCache:  make(map[string]string),
    }
}

// Resolve returns the place for the given position, consulting the caches
// first. Only cache misses wait on the throttle and reach the network.
func (lr *LocationResolver) Resolve(position Position) (placeInfo PlaceInfo, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    key := positionKey{
        latitude:  position.Latitude,
        longitude: position.Longitude,
    }

    detail, found := lr.locationCache[key]
    if found == false {
        lr.throttleWait()

        detail, err = lr.source.Location(position.Latitude, position.Longitude)
        log.PanicIf(err)

        lr.locationCache[key] = detail
        lr.lookupCount++
    }

    countryName, found := lr.countryCache[detail.CountryCode]
    if found == false {
        countryName, err = lr.source.CountryName(detail.CountryCode)
        log.PanicIf(err)

        lr.countryCache[detail.CountryCode] = countryName
    }

    localityFields := lr.fields.Lookup(countryName)

    placeInfo = PlaceInfo{
        City:          detail.Fields[localityFields.CityField],
        ProvinceState: detail.Fields[localityFields.ProvinceField],
        CountryName:   countryName,
        CountryCode:   detail.CountryCode,
    }

    return placeInfo, nil
}

func (lr *LocationResolver) throttleWait() {
    if lr.limiter == nil {
        return
    }

    err := lr.limiter.Wait(context.Background())
    log.PanicIf(err)
}

// LookupCount returns how many positions actually reached the collaborator.
func (lr *LocationResolver) LookupCount() int {
    return lr.lookupCount
}

// NewGeocodeStage wraps the resolver in a pipeline stage. Items without a
// position pass through untouched; a lookup fault drops only its own item.
func NewGeocodeStage(resolver *LocationResolver, store MetadataStore, queueDepth int) *Stage {
    transform := func(item *WorkItem) (forward *WorkItem, err error) {
        defer func() {
            if state := recover(); state != nil {
                err = log.Wrap(state.(error))
            }
        }()

        if item.Position == nil {
            PushDebugTrace(item.Filepath, "No position; geocoding skipped.")
            return item, nil
        }

        placeInfo, err := resolver.Resolve(*item.Position)
        log.PanicIf(err)

        if placeInfo.City != "" {
            store.Set(item, ResultFieldCity, TextValue(placeInfo.City))
            item.SetResult(ResultFieldCity, placeInfo.City)
        }

        if placeInfo.ProvinceState != "" {
            store.Set(item, ResultFieldProvinceState, TextValue(placeInfo.ProvinceState))
            item.SetResult(ResultFieldProvinceState, placeInfo.ProvinceState)
        }

        if placeInfo.CountryName != "" {
            store.Set(item, ResultFieldCountryName, TextValue(placeInfo.CountryName))
            item.SetResult(ResultFieldCountryName, placeInfo.CountryName)
        }

        resolverLogger.Debugf(nil, "Resolved [%s]: %s", item.Filepath, placeInfo)

        return item, nil
    }

    return NewStage("geocode", queueDepth, transform)
}
