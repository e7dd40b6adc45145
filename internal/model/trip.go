package model

import "time"

// Coords is a WGS84 position.
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TripLeg is one directed trip. A leg without EndTime is the active trip.
type TripLeg struct {
	ID          string     `json:"id"`
	StartName   string     `json:"startName"`
	StartTime   time.Time  `json:"startTime"`
	StartCoords *Coords    `json:"startCoords"`
	EndName     string     `json:"endName"`
	EndTime     *time.Time `json:"endTime"`
	EndCoords   *Coords    `json:"endCoords"`
	Km          float64    `json:"km"`
	Note        string     `json:"note"`
	Date        string     `json:"date"`
}

// Active reports whether the leg is still in progress.
func (l TripLeg) Active() bool { return l.EndTime == nil }
