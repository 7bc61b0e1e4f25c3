package model

import "time"

type Subscriber struct {
	Email     string    `json:"email"`
	Referrer  *string   `json:"referrer"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}
