package dto

type RouteResponse struct {
	RouteID        string  `json:"route_id"`
	WaypointCount  int     `json:"waypoint_count"`
	TotalDistanceM float64 `json:"total_distance_m"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

type TelemetryRowResponse struct {
	WaypointID int      `json:"waypoint_id"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Elevation  float64  `json:"elevation"`
	DistanceM  float64  `json:"distance_m"`
	SpeedLimit float64  `json:"speed_limit"`
	StopType   string   `json:"stop_type,omitempty"`
	GHI        *int     `json:"ghi,omitempty"`
	WindDir    *float64 `json:"wind_dir,omitempty"`
	WindSpeed  *float64 `json:"wind_speed,omitempty"`
	Speed      float64  `json:"speed"`
	Torque     float64  `json:"torque"`
	SOC        float64  `json:"soc"`
	ElapsedS   float64  `json:"elapsed_s"`
}

type TelemetryResponse struct {
	RouteID string                 `json:"route_id"`
	Rows    []TelemetryRowResponse `json:"rows"`
}
