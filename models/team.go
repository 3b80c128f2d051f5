package models

import "time"

// Team представляет участника сетки. Ростеры, клубы и платежи живут
// во внешних системах; здесь хранится только то, на что ссылается сетка.
type Team struct {
	ID        int       `json:"id" db:"id"`
	StopID    int       `json:"stop_id" db:"stop_id"`
	Name      string    `json:"name" db:"name"`
	Seed      *int      `json:"seed,omitempty" db:"seed"`
	Club      *string   `json:"club,omitempty" db:"club"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
