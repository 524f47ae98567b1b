package models

import "time"

const AlertStatusActive = "active"

// Location is a coordinate with an optional human-readable address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

func (l Location) Coordinate() Coordinate {
	return Coordinate{Lat: l.Lat, Lng: l.Lng}
}

type Alert struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId,omitempty"`
	Message    string      `json:"message"`
	Category   string      `json:"category"`
	Location   Location    `json:"location"`
	Responders []Responder `json:"responders"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type User struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Phone             string             `json:"phone"`
	Email             string             `json:"email,omitempty"`
	MedicalInfo       string             `json:"medicalInfo,omitempty"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// UserPatch carries a partial update; nil fields are left unchanged.
type UserPatch struct {
	Name              *string
	Phone             *string
	Email             *string
	MedicalInfo       *string
	EmergencyContacts *[]EmergencyContact
}

func (u *User) Apply(p UserPatch) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.MedicalInfo != nil {
		u.MedicalInfo = *p.MedicalInfo
	}
	if p.EmergencyContacts != nil {
		u.EmergencyContacts = *p.EmergencyContacts
	}
}
