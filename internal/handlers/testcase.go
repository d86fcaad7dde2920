package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/testtrack-dev/testtrack/db"
	"github.com/testtrack-dev/testtrack/internal/authz"
	"github.com/testtrack-dev/testtrack/internal/flash"
	"github.com/testtrack-dev/testtrack/internal/models"
	"github.com/testtrack-dev/testtrack/internal/utils"
	"gorm.io/gorm"
)

type TestCaseResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	ProjectID   uint   `json:"project_id"`
	CreatedBy   uint   `json:"created_by"`
}

func toTestCaseResponse(testCase models.TestCase) TestCaseResponse {
	return TestCaseResponse{
		ID:          testCase.ID,
		Title:       testCase.Title,
		Description: testCase.Description,
		Status:      testCase.Status,
		Priority:    testCase.Priority,
		ProjectID:   testCase.ProjectID,
		CreatedBy:   testCase.CreatedBy,
	}
}

// ListTestCases returns the project's test cases, most recent first.
func ListTestCases(ctx *gin.Context) {
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

	var testCases []models.TestCase

	if err := db.DB.Where("project_id = ?", project.ID).Order("id DESC").Find(&testCases).Error; err != nil {
		log.Printf("Failed to load test cases: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test cases"})
		return
	}

	response := make([]TestCaseResponse, 0, len(testCases))

	for _, testCase := range testCases {
		response = append(response, toTestCaseResponse(testCase))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project":    toProjectResponse(project),
		"test_cases": response,
		"notices":    flash.Take(ctx),
	})
}

// ShowTestCaseForm serves the blank test case form for a project.
func ShowTestCaseForm(ctx *gin.Context) {
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

func CreateTestCase(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flash.Set(ctx, flash.KindDanger, "Project not found.")
			ctx.Redirect(http.StatusFound, "/projects")
		} else {
			log.Printf("Failed to load project: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	title := strings.TrimSpace(ctx.PostForm("title"))
	description := ctx.PostForm("description")
	priority := ctx.PostForm("priority")

	if priority == "" {
		priority = models.PriorityMedium
	}

	listPath := fmt.Sprintf("/projects/%d/testcases", project.ID)

	if len(title) < 5 {
		flash.Set(ctx, flash.KindDanger, "Test case title must be at least 5 characters.")
		ctx.Redirect(http.StatusFound, listPath+"/new")
		return
	}

	testCase := models.TestCase{
		Title:       title,
		Description: description,
		Status:      models.TestCaseStatusNotRun,
		Priority:    priority,
		ProjectID:   project.ID,
		CreatedBy:   userID,
	}

	if err := db.DB.Create(&testCase).Error; err != nil {
		log.Printf("Failed to create test case: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create test case"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Test case created.")
	ctx.Redirect(http.StatusFound, listPath)
}

// ShowEditTestCase serves the pre-filled test case form. The parent project
// is looked up by foreign key rather than traversed through the record.
func ShowEditTestCase(ctx *gin.Context) {
	var testCase models.TestCase

	if err := db.DB.First(&testCase, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Test case not found"})
		} else {
			log.Printf("Failed to load test case: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test case"})
		}
		return
	}

	var project models.Project

	if err := db.DB.First(&project, "id = ?", testCase.ProjectID).Error; err != nil {
		log.Printf("Failed to load project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project":   toProjectResponse(project),
		"test_case": toTestCaseResponse(testCase),
		"notices":   flash.Take(ctx),
	})
}

// EditTestCase overwrites title, description, priority and status. There is
// no ownership restriction on edits, only on deletes.
func EditTestCase(ctx *gin.Context) {
	var testCase models.TestCase
	testCaseID := ctx.Param("id")

	if err := db.DB.First(&testCase, "id = ?", testCaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flash.Set(ctx, flash.KindDanger, "Test case not found.")
			ctx.Redirect(http.StatusFound, "/projects")
		} else {
			log.Printf("Failed to load test case: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test case"})
		}
		return
	}

	title := strings.TrimSpace(ctx.PostForm("title"))
	description := ctx.PostForm("description")
	priority := ctx.PostForm("priority")
	status := ctx.PostForm("status")

	if len(title) < 5 {
		flash.Set(ctx, flash.KindDanger, "Test case title must be at least 5 characters.")
		ctx.Redirect(http.StatusFound, "/testcases/"+testCaseID+"/edit")
		return
	}

	testCase.Title = title
	testCase.Description = description
	testCase.Priority = priority
	testCase.Status = status

	if err := db.DB.Save(&testCase).Error; err != nil {
		log.Printf("Failed to update test case: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update test case"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Test case updated.")
	ctx.Redirect(http.StatusFound, fmt.Sprintf("/projects/%d/testcases", testCase.ProjectID))
}

// DeleteTestCase removes a test case. Only an admin or the original
// creator may delete; everyone else gets a forbidden outcome and the row
// is left untouched.
func DeleteTestCase(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var testCase models.TestCase

	if err := db.DB.First(&testCase, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flash.Set(ctx, flash.KindDanger, "Test case not found.")
			ctx.Redirect(http.StatusFound, "/projects")
		} else {
			log.Printf("Failed to load test case: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test case"})
		}
		return
	}

	listPath := fmt.Sprintf("/projects/%d/testcases", testCase.ProjectID)

	if !authz.CanDelete(currentUser, testCase.CreatedBy) {
		flash.Set(ctx, flash.KindDanger, "You do not have permission to delete this test case.")
		ctx.Redirect(http.StatusFound, listPath)
		return
	}

	if err := db.DB.Delete(&testCase).Error; err != nil {
		log.Printf("Failed to delete test case: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete test case"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Test case deleted.")
	ctx.Redirect(http.StatusFound, listPath)
}
