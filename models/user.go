package models

type User struct {
	ID    string     `json:"_id"`
	Name  FlexString `json:"name"`
	Email string     `json:"email"`
	Phone string     `json:"phone"`
	Role  string     `json:"role"` // "student" or "teacher"
}
