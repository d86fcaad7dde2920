package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/testtrack-dev/testtrack/db"
	"github.com/testtrack-dev/testtrack/internal/flash"
	"github.com/testtrack-dev/testtrack/internal/models"
	"github.com/testtrack-dev/testtrack/internal/types"
	"github.com/testtrack-dev/testtrack/internal/utils"
	"gorm.io/gorm"
)

type ProjectResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   uint   `json:"created_by"`
	CreatedAt   string `json:"created_at"`
}

func toProjectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedBy:   project.CreatedBy,
		CreatedAt:   project.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Index is the dashboard: the five most recently created projects.
func Index(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var projects []models.Project

	if err := db.DB.Order("created_at DESC").Limit(5).Find(&projects).Error; err != nil {
		log.Printf("Failed to load recent projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, toProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:    currentUser.ID,
			Name:  currentUser.Name,
			Email: currentUser.Email,
			Role:  currentUser.Role,
		},
		"projects": response,
		"notices":  flash.Take(ctx),
	})
}

func ListProjects(ctx *gin.Context) {
	var projects []models.Project

	if err := db.DB.Order("created_at DESC").Find(&projects).Error; err != nil {
		log.Printf("Failed to load projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, toProjectResponse(project))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"projects": response,
		"notices":  flash.Take(ctx),
	})
}

// ShowProjectForm serves the blank project form view.
func ShowProjectForm(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"notices": flash.Take(ctx)})
}

func CreateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	name := strings.TrimSpace(ctx.PostForm("name"))
	description := ctx.PostForm("description")

	if len(name) < 3 {
		flash.Set(ctx, flash.KindDanger, "Project name must be at least 3 characters.")
		ctx.Redirect(http.StatusFound, "/projects/new")
		return
	}

	project := models.Project{
		Name:        name,
		Description: description,
		CreatedBy:   userID,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Project created.")
	ctx.Redirect(http.StatusFound, "/projects")
}

// ShowEditProject serves the pre-filled project form view.
func ShowEditProject(ctx *gin.Context) {
	var project models.Project

	if err := db.DB.First(&project, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("Failed to load project: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project": toProjectResponse(project),
		"notices": flash.Take(ctx),
	})
}

func EditProject(ctx *gin.Context) {
	var project models.Project
	projectID := ctx.Param("id")

	if err := db.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flash.Set(ctx, flash.KindDanger, "Project not found.")
			ctx.Redirect(http.StatusFound, "/projects")
		} else {
			log.Printf("Failed to load project: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	name := strings.TrimSpace(ctx.PostForm("name"))
	description := ctx.PostForm("description")

	if len(name) < 3 {
		flash.Set(ctx, flash.KindDanger, "Project name must be at least 3 characters.")
		ctx.Redirect(http.StatusFound, "/projects/"+projectID+"/edit")
		return
	}

	project.Name = name
	project.Description = description

	if err := db.DB.Save(&project).Error; err != nil {
		log.Printf("Failed to update project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Project updated.")
	ctx.Redirect(http.StatusFound, "/projects")
}

// DeleteProject removes a project and everything scoped to it. The admin
// gate runs in middleware before this handler. Dependent test cases and
// defects are deleted in the same transaction as the project row.
func DeleteProject(ctx *gin.Context) {
	var project models.Project
	projectID := ctx.Param("id")

	if err := db.DB.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flash.Set(ctx, flash.KindDanger, "Project not found.")
			ctx.Redirect(http.StatusFound, "/projects")
		} else {
			log.Printf("Failed to load project: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Defect{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.TestCase{}).Error; err != nil {
			return err
		}

		return tx.Delete(&project).Error
	})

	if err != nil {
		log.Printf("Failed to delete project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Project deleted.")
	ctx.Redirect(http.StatusFound, "/projects")
}
