package zone

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type AvoidanceZone struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Coordinates Coordinates `json:"coordinates"`
	Radius      float64     `json:"radius"`
}

type AddRequest struct {
	Label  string   `json:"label" validate:"required"`
	Lat    *float64 `json:"lat" validate:"required,latitude"`
	Lng    *float64 `json:"lng" validate:"required,longitude"`
	Radius float64  `json:"radius" validate:"min=0"`
}

type ToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type DeleteRequest struct {
	ZoneID string `json:"zoneId" validate:"required"`
}
