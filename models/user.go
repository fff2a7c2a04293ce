package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	Citizen    Role = "citizen"
	Corporator Role = "corporator"
	President  Role = "president"
)

// WardCount is the fixed number of municipal wards.
const WardCount = 35

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Contact      string             `bson:"contact" json:"contact"`
	Password     string             `bson:"password,omitempty" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	WardNumber   string             `bson:"wardNumber,omitempty" json:"wardNumber,omitempty"`
	HouseNumber  string             `bson:"houseNumber,omitempty" json:"houseNumber,omitempty"`
	BuildingName string             `bson:"buildingName,omitempty" json:"buildingName,omitempty"`
	StreetName   string             `bson:"streetName,omitempty" json:"streetName,omitempty"`
	City         string             `bson:"city,omitempty" json:"city,omitempty"`
	Pincode      string             `bson:"pincode,omitempty" json:"pincode,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}

// Address joins the address fields into the display form stamped onto issues.
func (u *User) Address() string {
	parts := []string{u.HouseNumber, u.BuildingName, u.StreetName, u.City, u.Pincode}
	address := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if address != "" {
			address += ", "
		}
		address += p
	}
	return address
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case Citizen, Corporator, President:
		return true
	}
	return false
}

// Wards returns the fixed ward list ("Ward 1" .. "Ward 35").
func Wards() []string {
	wards := make([]string, 0, WardCount)
	for i := 1; i <= WardCount; i++ {
		wards = append(wards, fmt.Sprintf("Ward %d", i))
	}
	return wards
}

// ValidWard reports whether ward is in the fixed ward list.
func ValidWard(ward string) bool {
	for _, w := range Wards() {
		if w == ward {
			return true
		}
	}
	return false
}
