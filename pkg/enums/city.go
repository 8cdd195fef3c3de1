package enums

import "fmt"

// City enumerates the cities the marketplace currently delivers to.
type City string

const (
	CityYaounde City = "YAOUNDE"
	CityDouala  City = "DOUALA"
)

var validCities = []City{
	CityYaounde,
	CityDouala,
}

// String implements fmt.Stringer.
func (c City) String() string {
	return string(c)
}

// IsValid reports whether the value is a serviced city.
func (c City) IsValid() bool {
	for _, candidate := range validCities {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCity converts raw input into a City.
func ParseCity(value string) (City, error) {
	for _, candidate := range validCities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid city %q", value)
}
