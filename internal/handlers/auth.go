package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/testtrack-dev/testtrack/db"
	"github.com/testtrack-dev/testtrack/internal/auth"
	"github.com/testtrack-dev/testtrack/internal/flash"
	"github.com/testtrack-dev/testtrack/internal/models"
	"github.com/testtrack-dev/testtrack/internal/types"
	"github.com/testtrack-dev/testtrack/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	Domain = os.Getenv("DOMAIN")
)

const sessionMaxAge = 60 * 60 * 24 * 7

func setSessionCookie(ctx *gin.Context, token string, maxAge int) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ShowRegister serves the registration form view.
func ShowRegister(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"notices": flash.Take(ctx)})
}

// Register creates a new user. Email must be unique; role defaults to
// tester when the form does not supply one.
func Register(ctx *gin.Context) {
	name := strings.TrimSpace(ctx.PostForm("name"))
	email := strings.ToLower(strings.TrimSpace(ctx.PostForm("email")))
	password := ctx.PostForm("password")
	role := ctx.PostForm("role")

	if role == "" {
		role = models.RoleTester
	}

	if name == "" || email == "" || password == "" {
		flash.Set(ctx, flash.KindDanger, "Name, email and password are required.")
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", email).First(&existingUser).Error

	if err == nil {
		flash.Set(ctx, flash.KindWarning, "Email already registered")
		ctx.Redirect(http.StatusFound, "/register")
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking existing user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	newUser := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Account created. You can now log in.")
	ctx.Redirect(http.StatusFound, "/login")
}

// ShowLogin serves the login form view.
func ShowLogin(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"notices": flash.Take(ctx)})
}

// Login verifies credentials and establishes the session cookie. Password
// verification goes through bcrypt's constant-time comparison, never a
// string equality check.
func Login(ctx *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(ctx.PostForm("email")))
	password := ctx.PostForm("password")

	var existingUser models.User

	err := db.DB.Where("email = ?", email).First(&existingUser).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flash.Set(ctx, flash.KindDanger, "Invalid email or password")
			ctx.Redirect(http.StatusFound, "/login")
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(password))

	if err != nil {
		flash.Set(ctx, flash.KindDanger, "Invalid email or password")
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	token, err := auth.GenerateJWT(existingUser.ID, existingUser.Email)

	if err != nil {
		log.Printf("Failed to generate session token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setSessionCookie(ctx, token, sessionMaxAge)
	ctx.Redirect(http.StatusFound, "/")
}

// Logout tears down the session and sends the user back to the login page.
func Logout(ctx *gin.Context) {
	setSessionCookie(ctx, "", -1)
	ctx.Redirect(http.StatusFound, "/login")
}

// Me returns the authenticated user bound to the current session.
func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:    currentUser.ID,
			Name:  currentUser.Name,
			Email: currentUser.Email,
			Role:  currentUser.Role,
		},
	})
}
