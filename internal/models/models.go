package models

import (
	"time"
)

type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"size:80;unique;not null"  json:"name"`
	Password string `gorm:"size:255;not null"        json:"-"`
}

type Ship struct {
	ID           uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Affiliation  string   `gorm:"size:100"                 json:"affiliation"`
	Category     string   `gorm:"size:100"                 json:"category"`
	Crew         int      `json:"crew"`
	Length       int      `json:"length"`
	Manufacturer string   `gorm:"size:200"                 json:"manufacturer"`
	Model        string   `gorm:"size:100"                 json:"model"`
	Roles        []string `gorm:"serializer:json"          json:"roles"`
	ShipClass    string   `gorm:"size:100"                 json:"ship_class"`
}

// TokenBlocklist holds the jti of every revoked token. A jti present here is
// rejected on every later request, no matter how much validity it has left.
// ExpiresAt mirrors the revoked token's own expiry so stale rows can be pruned.
type TokenBlocklist struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JTI       string    `gorm:"size:36;index;not null"   json:"jti"`
	CreatedAt time.Time `gorm:"not null"                 json:"created_at"`
	ExpiresAt time.Time `gorm:"not null"                 json:"expires_at"`
}

func (TokenBlocklist) TableName() string { return "token_blocklist" }
