package entity

import "time"

// Prediction — запись истории распознаваний.
type Prediction struct {
	ID         string
	Filename   string
	Disease    string
	Confidence float64
	CreatedAt  time.Time
}

// Session — сессия пользователя веб-интерфейса.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
