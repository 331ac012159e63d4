package maintenance

// Item is a recurring mileage-based maintenance task. Remaining and Due
// are computed against the latest recorded odometer on every read and
// never stored.
type Item struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	MileageInterval    int     `json:"mileage_interval"`
	LastServiceMileage int     `json:"last_service_mileage"`
	Enabled            bool    `json:"enabled"`
	Notes              *string `json:"notes"`
	Remaining          int     `json:"remaining"`
	Due                bool    `json:"due"`
}

type CreateItemRequest struct {
	Name               string  `json:"name"`
	MileageInterval    *int    `json:"mileage_interval"`
	LastServiceMileage *int    `json:"last_service_mileage"`
	Notes              *string `json:"notes"`
}

type UpdateItemRequest struct {
	Name               *string `json:"name"`
	MileageInterval    *int    `json:"mileage_interval"`
	LastServiceMileage *int    `json:"last_service_mileage"`
	Enabled            *bool   `json:"enabled"`
	Notes              *string `json:"notes"`
}
