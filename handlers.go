package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"finbook/models"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)

	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)

	v1 := r.Group("/v1")
	v1.Use(jwtAuthMiddleware())

	accounts := v1.Group("/accounts")
	accounts.GET("", listAccountsHandler)
	accounts.POST("", createAccountHandler)
	accounts.GET("/:id", getAccountHandler)
	accounts.PUT("/:id", updateAccountHandler)
	accounts.DELETE("/:id", deleteAccountHandler)
	accounts.PATCH("/:id/archive", archiveAccountHandler)
	accounts.PATCH("/:id/unarchive", unarchiveAccountHandler)

	categories := v1.Group("/categories")
	categories.GET("", listCategoriesHandler)
	categories.POST("", createCategoryHandler)
	categories.GET("/:id", getCategoryHandler)
	categories.PUT("/:id", updateCategoryHandler)
	categories.DELETE("/:id", deleteCategoryHandler)
	categories.PATCH("/:id/archive", archiveCategoryHandler)
	categories.PATCH("/:id/unarchive", unarchiveCategoryHandler)

	v1.GET("/settings", getSettingsHandler)
	v1.PUT("/settings", updateSettingsHandler)

	transactions := v1.Group("/transactions")
	transactions.GET("", listTransactionsHandler)
	transactions.POST("", createTransactionHandler)
	transactions.GET("/monthly", monthlyTransactionsHandler)
	transactions.GET("/summary", summaryTransactionsHandler)
	transactions.GET("/:id", getTransactionHandler)
	transactions.PUT("/:id", updateTransactionHandler)
	transactions.DELETE("/:id", deleteTransactionHandler)

	attachments := v1.Group("/attachments")
	attachments.GET("", listAttachmentsHandler)
	attachments.POST("", uploadAttachmentHandler)
	attachments.GET("/:id", getAttachmentHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			respondError(c, http.StatusUnauthorized, "missing or invalid Authorization header")
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			respondError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid claims")
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		c.Set("username", username)
		c.Next()
	}
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	uname := unameVal.(string)
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func meHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	respondOK(c, gin.H{"id": user.ID, "username": user.Username})
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := RegisterUser(req.Username, req.Password); err != nil {
		respondError(c, http.StatusConflict, err.Error())
		return
	}
	respondCreated(c, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create refresh token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": tokenString, "refresh_token": refreshToken})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		respondError(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"exp":      time.Now().Add(15 * time.Minute).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to rotate refresh token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusNotFound, "refresh token not found")
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to revoke token")
		return
	}
	respondOK(c, gin.H{"message": "refresh token revoked"})
}
