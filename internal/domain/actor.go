package domain

// Role роль пользователя
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
	// RoleSystem используется для событий, пришедших от платежного провайдера
	RoleSystem Role = "system"
)

// IsValid проверяет, что роль известна
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Actor аутентифицированный инициатор операции
type Actor struct {
	ID   UserID
	Role Role
}

// SystemActor инициатор для webhook-событий
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// User проекция пользователя из сервиса идентификации
type User struct {
	ID       UserID
	Role     Role
	IsActive bool
}
