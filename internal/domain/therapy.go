package domain

// Therapy проекция терапии из каталога (только чтение)
type Therapy struct {
	ID              TherapyID
	DoctorID        UserID
	Title           string
	IsActive        bool
	IsOnline        bool
	IsInPerson      bool
	Price           float64
	Currency        string
	DurationMinutes int
}

// Offers проверяет, доступен ли формат сессии
func (t *Therapy) Offers(sessionType SessionType) bool {
	switch sessionType {
	case SessionOnline:
		return t.IsOnline
	case SessionInPerson:
		return t.IsInPerson
	}
	return false
}
