// Package geo holds the small amount of spherical geometry the matcher needs:
// points, great-circle distance, bounding boxes and a pluggable proximity index.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius used for haversine distances.
const EarthRadiusMeters = 6371008.8

var ErrMalformedPoint = errors.New("location must be a (longitude, latitude) pair")

// Point is a WGS84 position. Stored as two plain columns so any SQL backend can
// filter on it.
type Point struct {
	Longitude float64 `gorm:"column:longitude;not null" json:"longitude"`
	Latitude  float64 `gorm:"column:latitude;not null" json:"latitude"`
}

func NewPoint(lon, lat float64) Point { return Point{Longitude: lon, Latitude: lat} }

// Validate rejects NaN/Inf and out of range coordinates.
func (p Point) Validate() error {
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) {
		return ErrMalformedPoint
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrMalformedPoint, p.Longitude)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrMalformedPoint, p.Latitude)
	}
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Longitude, p.Latitude)
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// MarshalJSON emits a GeoJSON Point.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{Type: "Point", Coordinates: []float64{p.Longitude, p.Latitude}})
}

// UnmarshalJSON accepts either a GeoJSON Point ({"type":"Point","coordinates":[lon,lat]})
// or a flat {"longitude":..,"latitude":..} object.
func (p *Point) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
		Longitude   *float64  `json:"longitude"`
		Latitude    *float64  `json:"latitude"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return ErrMalformedPoint
	}
	switch {
	case raw.Coordinates != nil:
		if len(raw.Coordinates) != 2 {
			return ErrMalformedPoint
		}
		if raw.Type != "" && raw.Type != "Point" {
			return fmt.Errorf("%w: unsupported geometry %q", ErrMalformedPoint, raw.Type)
		}
		p.Longitude, p.Latitude = raw.Coordinates[0], raw.Coordinates[1]
	case raw.Longitude != nil && raw.Latitude != nil:
		p.Longitude, p.Latitude = *raw.Longitude, *raw.Latitude
	default:
		return ErrMalformedPoint
	}
	return nil
}

// Distance returns the great-circle distance in metres between a and b.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := lat2 - lat1
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
