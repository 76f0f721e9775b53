package geotag

// LocalityFields names which place-lookup response fields supply the
// city-equivalent and province-equivalent values.
type LocalityFields struct {
    CityField     string
    ProvinceField string
}

// LocalityFieldTable is a plain keyed lookup with a fallback: one default
// field pair plus explicit per-country overrides, keyed by country name.
type LocalityFieldTable struct {
    defaultFields LocalityFields
    overrides     map[string]LocalityFields
}

func NewLocalityFieldTable(defaultFields LocalityFields) *LocalityFieldTable {
    return &LocalityFieldTable{
        defaultFields: defaultFields,
        overrides:     make(map[string]LocalityFields),
    }
}

func (lft *LocalityFieldTable) AddOverride(countryName string, fields LocalityFields) {
    lft.overrides[countryName] = fields
}

// Lookup returns the override for the given country name if present, else the
// default pair.
func (lft *LocalityFieldTable) Lookup(countryName string) LocalityFields {
    if fields, found := lft.overrides[countryName]; found == true {
        return fields
    }

    return lft.defaultFields
}

// DefaultLocalityFieldTable reflects the GeoNames response shape: the place
// name is the city and the first-order administrative division the province.
// Countries whose useful locality lives in another field get overrides.
func DefaultLocalityFieldTable() *LocalityFieldTable {
    lft := NewLocalityFieldTable(LocalityFields{
        CityField:     "name",
        ProvinceField: "adminName1",
    })

    // UK place names come back as suburbs; the county-level division is the
    // useful city equivalent.
    lft.AddOverride("United Kingdom", LocalityFields{
        CityField:     "adminName2",
        ProvinceField: "adminName1",
    })

    return lft
}
