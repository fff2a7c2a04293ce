package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civix-be/config"
	"civix-be/models"
	authUtils "civix-be/utils"
)

// RegisterUser handles user registration
func RegisterUser(c *gin.Context) {
	var input struct {
		Name         string      `json:"name" binding:"required,max=50"`
		Contact      string      `json:"contact" binding:"required,min=10,max=15"`
		Password     string      `json:"password" binding:"required,min=6"`
		Role         models.Role `json:"role" binding:"required"`
		WardNumber   string      `json:"wardNumber"`
		HouseNumber  string      `json:"houseNumber"`
		BuildingName string      `json:"buildingName"`
		StreetName   string      `json:"streetName"`
		City         string      `json:"city"`
		Pincode      string      `json:"pincode"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	// Ward membership is what scopes citizen reports and corporator
	// authority; the president is city-wide.
	if input.Role != models.President && !models.ValidWard(input.WardNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ward number"})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"contact": input.Contact})
	if err != nil {
		config.Log.Errorw("error checking existing user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this contact already exists"})
		return
	}

	user := models.User{
		Name:         input.Name,
		Contact:      input.Contact,
		Password:     input.Password,
		Role:         input.Role,
		WardNumber:   input.WardNumber,
		HouseNumber:  input.HouseNumber,
		BuildingName: input.BuildingName,
		StreetName:   input.StreetName,
		City:         input.City,
		Pincode:      input.Pincode,
		CreatedAt:    time.Now(),
	}

	if err := user.HashPassword(); err != nil {
		config.Log.Errorw("error hashing password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	result, err := userCollection.InsertOne(ctx, user)
	if err != nil {
		config.Log.Errorw("error inserting user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	user.ID = result.InsertedID.(primitive.ObjectID)
	user.Password = ""
	c.JSON(http.StatusCreated, user)
}

// LoginUser handles user login
func LoginUser(c *gin.Context) {
	var input struct {
		Contact  string `json:"contact" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"contact": input.Contact}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := authUtils.GenerateAndSetToken(user.ID.Hex())
	if err != nil {
		config.Log.Errorw("error generating token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	// For production, don't set domain to allow cross-origin cookies
	if environment == "production" {
		domain = ""
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   3600,
		Path:     "/",
		Domain:   domain,
		Secure:   environment == "production",
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(c.Writer, cookie)

	user.Password = ""
	c.JSON(http.StatusOK, user)
}

// GetMe retrieves the authenticated user's information
func GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	userCollection := config.GetCollection("users")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = userCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, user)
}

// LogoutUser handles user logout by clearing the auth_token cookie
func LogoutUser(c *gin.Context) {
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	c.SetCookie("auth_token", "", -1, "/", domain, environment == "production", true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
