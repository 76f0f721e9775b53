package geotag

import (
    "fmt"
    "net/http"
    "net/url"
    "time"

    "encoding/json"

    "github.com/dsoprea/go-logging"
)

const (
    geonamesRequestTimeout = time.Second * 30
)

var (
    geonamesLogger = log.NewLogger("geotag.geonames")
)

// GeonamesClient speaks the GeoNames web service. It implements PlaceSource.
// The resolver in front of it is responsible for caching and pacing.
type GeonamesClient struct {
    httpClient *http.Client
    baseUrl    string
    username   string
}

func NewGeonamesClient(baseUrl, username string) *GeonamesClient {
    if baseUrl == "" {
        baseUrl = DefaultGeonamesUrl
    }

    return &GeonamesClient{
        httpClient: &http.Client{
            Timeout: geonamesRequestTimeout,
        },
        baseUrl:  baseUrl,
        username: username,
    }
}

type geonamesStatus struct {
    Message string `json:"message"`
    Value   int    `json:"value"`
}

// get performs one service call and decodes the response body. The service
// reports its own faults in-band through a "status" member, which decodes into
// whatever result struct the caller passes.
func (gc *GeonamesClient) get(endpoint string, query url.Values, result interface{}) (err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    query.Set("username", gc.username)

    requestUrl := fmt.Sprintf("%s/%s?%s", gc.baseUrl, endpoint, query.Encode())

    geonamesLogger.Debugf(nil, "Calling [%s].", endpoint)

    response, err := gc.httpClient.Get(requestUrl)
    log.PanicIf(err)

    defer response.Body.Close()

    if response.StatusCode != http.StatusOK {
        log.Panicf("place-lookup service returned status (%d) for [%s]", response.StatusCode, endpoint)
    }

    d := json.NewDecoder(response.Body)

    err = d.Decode(result)
    log.PanicIf(err)

    return nil
}

// Location returns the nearest populated place. All simple string fields of
// the first match are exposed so the locality-field table can select among
// them.
func (gc *GeonamesClient) Location(latitude, longitude float64) (detail *PlaceDetail, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    query := url.Values{}
    query.Set("lat", fmt.Sprintf("%.6f", latitude))
    query.Set("lng", fmt.Sprintf("%.6f", longitude))
    query.Set("style", "full")

    result := struct {
        Geonames []map[string]interface{} `json:"geonames"`
        Status   *geonamesStatus          `json:"status"`
    }{}

    err = gc.get("findNearbyPlaceNameJSON", query, &result)
    log.PanicIf(err)

    if result.Status != nil {
        log.Panicf("place-lookup service fault (%d): %s", result.Status.Value, result.Status.Message)
    }

    if len(result.Geonames) == 0 {
        return nil, ErrNoPlaceFound
    }

    fields := make(map[string]string)
    for name, value := range result.Geonames[0] {
        if text, ok := value.(string); ok == true {
            fields[name] = text
        }
    }

    detail = &PlaceDetail{
        CountryCode: fields["countryCode"],
        Fields:      fields,
    }

    return detail, nil
}

// CountryName resolves an ISO country code to its display name.
func (gc *GeonamesClient) CountryName(countryCode string) (name string, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    query := url.Values{}
    query.Set("country", countryCode)

    result := struct {
        Geonames []struct {
            CountryName string `json:"countryName"`
        } `json:"geonames"`
        Status *geonamesStatus `json:"status"`
    }{}

    err = gc.get("countryInfoJSON", query, &result)
    log.PanicIf(err)

    if result.Status != nil {
        log.Panicf("place-lookup service fault (%d): %s", result.Status.Value, result.Status.Message)
    }

    if len(result.Geonames) == 0 {
        // An unknown code is not a fault; the code itself is still usable.
        return countryCode, nil
    }

    return result.Geonames[0].CountryName, nil
}

// Timezone returns the timezone identifier covering the given position.
func (gc *GeonamesClient) Timezone(latitude, longitude float64) (timezoneId string, err error) {
    defer func() {
        if state := recover(); state != nil {
            err = log.Wrap(state.(error))
        }
    }()

    query := url.Values{}
    query.Set("lat", fmt.Sprintf("%.6f", latitude))
    query.Set("lng", fmt.Sprintf("%.6f", longitude))

    result := struct {
        TimezoneId string          `json:"timezoneId"`
        Status     *geonamesStatus `json:"status"`
    }{}

    err = gc.get("timezoneJSON", query, &result)
    log.PanicIf(err)

    if result.Status != nil {
        log.Panicf("place-lookup service fault (%d): %s", result.Status.Value, result.Status.Message)
    }

    if result.TimezoneId == "" {
        return "", ErrTimezoneNotAvailable
    }

    return result.TimezoneId, nil
}
