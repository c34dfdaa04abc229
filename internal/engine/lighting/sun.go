// Package lighting provides sun placement helpers for directional lights.
package lighting

import (
	"math"

	m "github.com/Faultbox/midgard-shadows/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to the direction
// sunlight travels. Longitude is rotation around the Y axis, latitude is
// elevation above the horizon. The result is normalized and points down for
// any positive latitude.
func SunDirection(longitude, latitude float32) m.Vec3 {
	lonRad := float64(longitude) * math.Pi / 180.0
	latRad := float64(latitude) * math.Pi / 180.0

	// Spherical to Cartesian, towards the sun
	x := float32(math.Cos(latRad) * math.Sin(lonRad))
	y := float32(math.Sin(latRad))
	z := float32(math.Cos(latRad) * math.Cos(lonRad))

	return m.Vec3{X: -x, Y: -y, Z: -z}
}

// SunPosition places a light distance units up-sun of center.
func SunPosition(center, direction m.Vec3, distance float32) m.Vec3 {
	return center.Sub(direction.Normalize().Scale(distance))
}

// Sweep returns the longitude reached after elapsed seconds at speed degrees
// per second, wrapped to [0, 360).
func Sweep(start, speed, elapsed float32) float32 {
	lon := math.Mod(float64(start+speed*elapsed), 360)
	if lon < 0 {
		lon += 360
	}
	return float32(lon)
}
