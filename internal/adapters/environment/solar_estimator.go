package environment

import (
	"math"
	"time"

	"solar-strategy-service/internal/domain"
)

// Estimates array charging power from the waypoint's recorded horizontal
// irradiance and the sun's position relative to the tilted panel.
// Sun geometry is computed internally (NOAA-style approximation), so the
// estimator needs no network access during a run.
type SolarEstimator struct {
	PanelAreaM2     float64
	PanelEfficiency float64
	PanelTiltDeg    float64
}

func NewSolarEstimator(params domain.VehicleParams) *SolarEstimator {
	return &SolarEstimator{
		PanelAreaM2:     params.PanelAreaM2,
		PanelEfficiency: params.PanelEfficiency,
		PanelTiltDeg:    math.Abs(params.PanelTiltDeg),
	}
}

// PanelPower projects the waypoint's GHI reading onto the panel plane for
// the vehicle's heading at time t and scales by panel area and efficiency.
// A waypoint without a GHI reading contributes zero power: along parts of
// the route environmental data is simply absent, which is not an error.
func (e *SolarEstimator) PanelPower(wp domain.Waypoint, headingAzimuth float64, t time.Time) float64 {
	if wp.GHI == nil || *wp.GHI <= 0 {
		return 0
	}

	sunElev, sunAz := SunPosition(wp.Lat, wp.Lon, t)
	if sunElev <= 0 {
		return 0
	}

	tilt := e.PanelTiltDeg * math.Pi / 180
	elev := sunElev * math.Pi / 180
	azDiff := (headingAzimuth - sunAz) * math.Pi / 180

	incidence := math.Cos(elev)*math.Sin(tilt)*math.Cos(azDiff) +
		math.Sin(elev)*math.Cos(tilt)
	if incidence <= 0 {
		return 0
	}

	return float64(*wp.GHI) * e.PanelAreaM2 * e.PanelEfficiency * incidence
}

// SunPosition returns the solar elevation and azimuth in degrees for a
// lat/lon (degrees) at time t. Accuracy is a fraction of a degree, which is
// ample for strategic irradiance projection.
func SunPosition(lat, lon float64, t time.Time) (elevation, azimuth float64) {
	t = t.UTC()

	// Fractional year in radians.
	daySeconds := float64(t.Hour())*3600 + float64(t.Minute())*60 + float64(t.Second())
	gamma := 2 * math.Pi / 365 * (float64(t.YearDay()) - 1 + (daySeconds/3600-12)/24)

	// Equation of time (minutes) and solar declination (radians), NOAA.
	eqTime := 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) - 0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) - 0.040849*math.Sin(2*gamma))
	decl := 0.006918 -
		0.399912*math.Cos(gamma) + 0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) + 0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) + 0.00148*math.Sin(3*gamma)

	// True solar time in minutes, then hour angle in radians.
	trueSolarMin := math.Mod(daySeconds/60+eqTime+4*lon+1440, 1440)
	hourAngle := (trueSolarMin/4 - 180) * math.Pi / 180

	latRad := lat * math.Pi / 180
	cosZenith := math.Sin(latRad)*math.Sin(decl) +
		math.Cos(latRad)*math.Cos(decl)*math.Cos(hourAngle)
	cosZenith = math.Max(-1, math.Min(1, cosZenith))
	zenith := math.Acos(cosZenith)

	elevation = 90 - zenith*180/math.Pi

	denom := math.Cos(latRad) * math.Sin(zenith)
	if denom == 0 {
		return elevation, 0
	}
	cosAz := (math.Sin(decl) - math.Sin(latRad)*cosZenith) / denom
	cosAz = math.Max(-1, math.Min(1, cosAz))
	azimuth = math.Acos(cosAz) * 180 / math.Pi
	if hourAngle > 0 {
		azimuth = 360 - azimuth
	}
	return elevation, azimuth
}
