package domain

import "time"

// AppointmentFilter фильтр списков записей пациента или врача
type AppointmentFilter struct {
	Status *AppointmentStatus
	// Date записи на конкретную дату
	Date *time.Time
	// From записи начиная с даты включительно
	From *time.Time
	// IncludeInactive включать cancelled и no_show, если Status не задан
	IncludeInactive bool
}
