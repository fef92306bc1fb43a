package identity

// User модель пользователя из сервиса идентификации
type User struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
