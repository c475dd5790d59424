package geo

import "math"

// boxPad widens every box edge so a point sitting exactly on the radius is never
// lost to rounding before the exact distance check runs.
const boxPad = 1e-7

// BBox is an axis-aligned lon/lat rectangle. It is only a prefilter; callers must
// still compare Distance against the radius.
type BBox struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

// BoundingBox returns a box containing every point within radius metres of center.
// Boxes touching a pole or crossing the antimeridian span all longitudes.
func BoundingBox(center Point, radius float64) BBox {
	if radius < 0 {
		radius = 0
	}
	angular := radius / EarthRadiusMeters
	dLat := degrees(angular)

	box := BBox{
		MinLat: center.Latitude - dLat - boxPad,
		MaxLat: center.Latitude + dLat + boxPad,
		MinLon: -180,
		MaxLon: 180,
	}
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		return box
	}

	sinRatio := math.Sin(angular) / math.Cos(radians(center.Latitude))
	if sinRatio >= 1 {
		return box
	}
	dLon := degrees(math.Asin(sinRatio))
	minLon := center.Longitude - dLon - boxPad
	maxLon := center.Longitude + dLon + boxPad
	if minLon < -180 || maxLon > 180 {
		return box
	}
	box.MinLon, box.MaxLon = minLon, maxLon
	return box
}

func (b BBox) Contains(p Point) bool {
	return p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon &&
		p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat
}

// Within reports whether p lies within radius metres of center, boundary included.
func Within(center, p Point, radius float64) bool {
	return Distance(center, p) <= radius
}
