package models

import (
	"time"
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	JoinDate       time.Time `json:"join_date"`
	Town           string    `json:"town"`
	Preferences    []string  `json:"preferences"`
	OrderFrequency float64   `json:"order_frequency"` // average orders per day
}
