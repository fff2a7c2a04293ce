package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"civix-be/config"
	"civix-be/middlewares"
	"civix-be/models"
)

// UpdateProfile lets a user edit their own profile. Contact, role and city
// are immutable here.
func UpdateProfile(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Name         *string `json:"name,omitempty"`
		WardNumber   *string `json:"wardNumber,omitempty"`
		HouseNumber  *string `json:"houseNumber,omitempty"`
		BuildingName *string `json:"buildingName,omitempty"`
		StreetName   *string `json:"streetName,omitempty"`
		Pincode      *string `json:"pincode,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{}
	if input.Name != nil {
		if *input.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		update["name"] = *input.Name
	}
	if input.WardNumber != nil {
		if !models.ValidWard(*input.WardNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward number"})
			return
		}
		update["wardNumber"] = *input.WardNumber
	}
	if input.HouseNumber != nil {
		update["houseNumber"] = *input.HouseNumber
	}
	if input.BuildingName != nil {
		update["buildingName"] = *input.BuildingName
	}
	if input.StreetName != nil {
		update["streetName"] = *input.StreetName
	}
	if input.Pincode != nil {
		update["pincode"] = *input.Pincode
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userCollection := config.GetCollection("users")
	_, err := userCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": update})
	if err != nil {
		config.Log.Errorw("error updating profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	var updated models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": user.ID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	updated.Password = ""
	c.JSON(http.StatusOK, updated)
}
