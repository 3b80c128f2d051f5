package models

import "time"

// Stop - этап тура, владелец команд и сетки. Расписание, площадки и
// регистрация живут во внешних системах; здесь этап нужен как корень
// агрегата, на который ссылаются teams и rounds.
type Stop struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
