package model

import "time"

type Course struct {
	ID          int64     `json:"id"`
	TutorID     int64     `json:"tutor_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"` // длительность занятия по умолчанию, в минутах
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
