package models

import "time"

type DeliveryPartner struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinDate time.Time `json:"join_date"`
	Rating   float64   `json:"rating"`
	AvgSpeed float64   `json:"avg_speed"` // km/h
}
