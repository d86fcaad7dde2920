package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/testtrack-dev/testtrack/db"
	"github.com/testtrack-dev/testtrack/internal/authz"
	"github.com/testtrack-dev/testtrack/internal/flash"
	"github.com/testtrack-dev/testtrack/internal/models"
	"github.com/testtrack-dev/testtrack/internal/utils"
	"gorm.io/gorm"
)

// errNotFixed signals the one guarded status transition: a defect may only
// move to "closed" from a stored status of "fixed".
var errNotFixed = errors.New("defect is not fixed")

type DefectResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Status      string `json:"status"`
	ProjectID   uint   `json:"project_id"`
	TestCaseID  *uint  `json:"test_case_id"`
	CreatedBy   uint   `json:"created_by"`
	AssignedTo  *uint  `json:"assigned_to"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toDefectResponse(defect models.Defect) DefectResponse {
	return DefectResponse{
		ID:          defect.ID,
		Title:       defect.Title,
		Description: defect.Description,
		Severity:    defect.Severity,
		Status:      defect.Status,
		ProjectID:   defect.ProjectID,
		TestCaseID:  defect.TestCaseID,
		CreatedBy:   defect.CreatedBy,
		AssignedTo:  defect.AssignedTo,
		CreatedAt:   defect.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   defect.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// resolveTestCaseRef turns the optional test_case_id form value into a
// foreign key. Anything that does not parse as an integer or does not
// reference a test case in the given project is treated as absent, so a
// dangling reference is never written. The lookup runs on the given handle
// so callers inside a transaction stay inside it.
func resolveTestCaseRef(tx *gorm.DB, raw string, projectID uint) *uint {
	if raw == "" {
		return nil
	}

	parsed, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return nil
	}

	var testCase models.TestCase

	if err := tx.Where("id = ? AND project_id = ?", parsed, projectID).First(&testCase).Error; err != nil {
		return nil
	}

	return &testCase.ID
}

// ListDefects returns the project's defects, most recently reported first.
func ListDefects(ctx *gin.Context) {
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

	var defects []models.Defect

	if err := db.DB.Where("project_id = ?", project.ID).Order("created_at DESC").Find(&defects).Error; err != nil {
		log.Printf("Failed to load defects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve defects"})
		return
	}

	response := make([]DefectResponse, 0, len(defects))

	for _, defect := range defects {
		response = append(response, toDefectResponse(defect))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project": toProjectResponse(project),
		"defects": response,
		"notices": flash.Take(ctx),
	})
}

// ShowDefectForm serves the blank defect form along with the project's test
// cases, so the defect can be linked to the case that exposed it.
func ShowDefectForm(ctx *gin.Context) {
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

	if err := db.DB.Where("project_id = ?", project.ID).Find(&testCases).Error; err != nil {
		log.Printf("Failed to load test cases: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test cases"})
		return
	}

	caseResponse := make([]TestCaseResponse, 0, len(testCases))

	for _, testCase := range testCases {
		caseResponse = append(caseResponse, toTestCaseResponse(testCase))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project":    toProjectResponse(project),
		"test_cases": caseResponse,
		"notices":    flash.Take(ctx),
	})
}

func CreateDefect(ctx *gin.Context) {
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
	severity := ctx.PostForm("severity")

	if severity == "" {
		severity = models.SeverityMajor
	}

	listPath := fmt.Sprintf("/projects/%d/defects", project.ID)

	if len(title) < 5 {
		flash.Set(ctx, flash.KindDanger, "Defect title must be at least 5 characters.")
		ctx.Redirect(http.StatusFound, listPath+"/new")
		return
	}

	defect := models.Defect{
		Title:       title,
		Description: description,
		Severity:    severity,
		Status:      models.DefectStatusOpen,
		ProjectID:   project.ID,
		TestCaseID:  resolveTestCaseRef(db.DB, ctx.PostForm("test_case_id"), project.ID),
		CreatedBy:   userID,
	}

	if err := db.DB.Create(&defect).Error; err != nil {
		log.Printf("Failed to create defect: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create defect"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Defect logged.")
	ctx.Redirect(http.StatusFound, listPath)
}

// ShowEditDefect serves the pre-filled defect form plus the project's test
// cases for the link selector.
func ShowEditDefect(ctx *gin.Context) {
	var defect models.Defect

	if err := db.DB.First(&defect, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Defect not found"})
		} else {
			log.Printf("Failed to load defect: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve defect"})
		}
		return
	}

	var project models.Project

	if err := db.DB.First(&project, "id = ?", defect.ProjectID).Error; err != nil {
		log.Printf("Failed to load project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	var testCases []models.TestCase

	if err := db.DB.Where("project_id = ?", project.ID).Find(&testCases).Error; err != nil {
		log.Printf("Failed to load test cases: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve test cases"})
		return
	}

	caseResponse := make([]TestCaseResponse, 0, len(testCases))

	for _, testCase := range testCases {
		caseResponse = append(caseResponse, toTestCaseResponse(testCase))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project":    toProjectResponse(project),
		"defect":     toDefectResponse(defect),
		"test_cases": caseResponse,
		"notices":    flash.Take(ctx),
	})
}

// EditDefect overwrites the defect's fields. The status transition guard is
// checked against the stored row inside the write transaction: a defect must
// be "fixed" before it can be "closed", and a rejected transition leaves the
// record untouched.
func EditDefect(ctx *gin.Context) {
	var defect models.Defect
	defectID := ctx.Param("id")

	if err := db.DB.First(&defect, "id = ?", defectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flash.Set(ctx, flash.KindDanger, "Defect not found.")
			ctx.Redirect(http.StatusFound, "/projects")
		} else {
			log.Printf("Failed to load defect: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve defect"})
		}
		return
	}

	title := strings.TrimSpace(ctx.PostForm("title"))
	description := ctx.PostForm("description")
	severity := ctx.PostForm("severity")
	status := ctx.PostForm("status")

	editPath := "/defects/" + defectID + "/edit"

	if len(title) < 5 {
		flash.Set(ctx, flash.KindDanger, "Defect title must be at least 5 characters.")
		ctx.Redirect(http.StatusFound, editPath)
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&defect, "id = ?", defect.ID).Error; err != nil {
			return err
		}

		if status == models.DefectStatusClosed && defect.Status != models.DefectStatusFixed {
			return errNotFixed
		}

		defect.Title = title
		defect.Description = description
		defect.Severity = severity
		defect.Status = status
		defect.TestCaseID = resolveTestCaseRef(tx, ctx.PostForm("test_case_id"), defect.ProjectID)

		return tx.Save(&defect).Error
	})

	if err != nil {
		if errors.Is(err, errNotFixed) {
			flash.Set(ctx, flash.KindWarning, "Defect must be marked as 'fixed' before it can be closed.")
			ctx.Redirect(http.StatusFound, editPath)
			return
		}
		log.Printf("Failed to update defect: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update defect"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Defect updated.")
	ctx.Redirect(http.StatusFound, fmt.Sprintf("/projects/%d/defects", defect.ProjectID))
}

// DeleteDefect removes a defect, admin or original creator only.
func DeleteDefect(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var defect models.Defect

	if err := db.DB.First(&defect, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			flash.Set(ctx, flash.KindDanger, "Defect not found.")
			ctx.Redirect(http.StatusFound, "/projects")
		} else {
			log.Printf("Failed to load defect: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve defect"})
		}
		return
	}

	listPath := fmt.Sprintf("/projects/%d/defects", defect.ProjectID)

	if !authz.CanDelete(currentUser, defect.CreatedBy) {
		flash.Set(ctx, flash.KindDanger, "You do not have permission to delete this defect.")
		ctx.Redirect(http.StatusFound, listPath)
		return
	}

	if err := db.DB.Delete(&defect).Error; err != nil {
		log.Printf("Failed to delete defect: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete defect"})
		return
	}

	flash.Set(ctx, flash.KindSuccess, "Defect deleted.")
	ctx.Redirect(http.StatusFound, listPath)
}
