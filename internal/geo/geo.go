// Package geo contains pure great-circle helpers used by the tracking
// pipeline. All distances are in metres and all angles in degrees.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle (haversine) distance in metres between
// two points given in decimal degrees.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	rLat1 := toRadians(lat1)
	rLat2 := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Bearing returns the initial bearing from the first point to the second,
// normalised to [0, 360).
func Bearing(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := toRadians(lat1)
	rLat2 := toRadians(lat2)
	dLng := toRadians(lng2 - lng1)

	y := math.Sin(dLng) * math.Cos(rLat2)
	x := math.Cos(rLat1)*math.Sin(rLat2) - math.Sin(rLat1)*math.Cos(rLat2)*math.Cos(dLng)

	return normalize360(toDegrees(math.Atan2(y, x)))
}

// TurnAngle returns the signed change of heading going from bearing `from`
// to bearing `to`, in (-180, 180]. Positive values are right (clockwise)
// turns.
func TurnAngle(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// Destination returns the point reached by travelling distanceMeters from
// the origin along the given initial bearing.
func Destination(lat, lng, bearing, distanceMeters float64) (float64, float64) {
	delta := distanceMeters / earthRadiusMeters
	theta := toRadians(bearing)
	rLat := toRadians(lat)
	rLng := toRadians(lng)

	lat2 := math.Asin(math.Sin(rLat)*math.Cos(delta) + math.Cos(rLat)*math.Sin(delta)*math.Cos(theta))
	lng2 := rLng + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(rLat),
		math.Cos(delta)-math.Sin(rLat)*math.Sin(lat2),
	)

	return toDegrees(lat2), normalize180(toDegrees(lng2))
}

// ValidCoordinates reports whether lat/lng are finite and within range.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func normalize360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func normalize180(deg float64) float64 {
	d := math.Mod(deg+540, 360) - 180
	if d == -180 {
		return 180
	}
	return d
}
