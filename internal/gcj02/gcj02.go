// Package gcj02 converts between the WGS84 and GCJ02 geodetic frames.
//
// All functions take and return degrees, longitude first. Points outside
// mainland China are returned unchanged, matching the published offset
// algorithm.
package gcj02

import "math"

const (
	// Krasovsky 1940 ellipsoid, as used by the offset algorithm.
	semiMajor = 6378245.0
	eccSq     = 0.00669342162296594323
)

// InChina reports whether the point falls inside the rough bounding box the
// offset is applied to.
func InChina(lonDeg, latDeg float64) bool {
	return lonDeg >= 72.004 && lonDeg <= 137.8347 && latDeg >= 0.8293 && latDeg <= 55.8271
}

// FromWGS84 converts a WGS84 point to GCJ02.
func FromWGS84(lonDeg, latDeg float64) (float64, float64) {
	if !InChina(lonDeg, latDeg) {
		return lonDeg, latDeg
	}
	dLon, dLat := offset(lonDeg, latDeg)
	return lonDeg + dLon, latDeg + dLat
}

// ToWGS84 converts a GCJ02 point back to WGS84 using the single-step
// inverse. The result is accurate to a few meters.
func ToWGS84(lonDeg, latDeg float64) (float64, float64) {
	if !InChina(lonDeg, latDeg) {
		return lonDeg, latDeg
	}
	dLon, dLat := offset(lonDeg, latDeg)
	return lonDeg - dLon, latDeg - dLat
}

func offset(lonDeg, latDeg float64) (dLon, dLat float64) {
	x, y := lonDeg-105.0, latDeg-35.0
	dLat = shiftLat(x, y)
	dLon = shiftLon(x, y)

	radLat := latDeg / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - eccSq*magic*magic
	sqrtMagic := math.Sqrt(magic)

	dLat = (dLat * 180.0) / ((semiMajor * (1 - eccSq)) / (magic * sqrtMagic) * math.Pi)
	dLon = (dLon * 180.0) / (semiMajor / sqrtMagic * math.Cos(radLat) * math.Pi)
	return dLon, dLat
}

func shiftLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func shiftLon(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}
