package therapycatalog

// TherapyResponse модель терапии из каталога
type TherapyResponse struct {
	ID              string  `json:"id"`
	DoctorID        string  `json:"doctor_id"`
	Title           string  `json:"title"`
	IsActive        bool    `json:"is_active"`
	IsOnline        bool    `json:"is_online"`
	IsInPerson      bool    `json:"is_in_person"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	DurationMinutes int     `json:"duration_minutes"`
}
