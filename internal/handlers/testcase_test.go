package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testtrack-dev/testtrack/db"
	"github.com/testtrack-dev/testtrack/internal/models"
)

func createProject(t *testing.T, name string, createdBy uint) models.Project {
	t.Helper()

	project := models.Project{Name: name, CreatedBy: createdBy}
	require.NoError(t, db.DB.Create(&project).Error)

	return project
}

func createTestCase(t *testing.T, title string, project models.Project, createdBy uint) models.TestCase {
	t.Helper()

	testCase := models.TestCase{
		Title:     title,
		Status:    models.TestCaseStatusNotRun,
		Priority:  models.PriorityMedium,
		ProjectID: project.ID,
		CreatedBy: createdBy,
	}
	require.NoError(t, db.DB.Create(&testCase).Error)

	return testCase
}

func TestCreateTestCaseDefaults(t *testing.T) {
	r := setupRouter(t)
	user := createUser(t, "Alice", "alice@example.com", models.RoleTester)
	project := createProject(t, "Checkout Flow", user.ID)

	w := doPostForm(r, fmt.Sprintf("/projects/%d/testcases/new", project.ID), url.Values{
		"title":       {"  Verify coupon code applies  "},
		"description": {"apply a valid coupon at checkout"},
	}, sessionCookie(t, user))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/projects/%d/testcases", project.ID), w.Header().Get("Location"))

	var testCase models.TestCase
	require.NoError(t, db.DB.First(&testCase, "project_id = ?", project.ID).Error)

	assert.Equal(t, "Verify coupon code applies", testCase.Title)
	assert.Equal(t, models.TestCaseStatusNotRun, testCase.Status)
	assert.Equal(t, models.PriorityMedium, testCase.Priority)
	assert.Equal(t, user.ID, testCase.CreatedBy)
}

func TestCreateTestCaseRejectsShortTitle(t *testing.T) {
	r := setupRouter(t)
	user := createUser(t, "Alice", "alice@example.com", models.RoleTester)
	project := createProject(t, "Checkout Flow", user.ID)

	w := doPostForm(r, fmt.Sprintf("/projects/%d/testcases/new", project.ID), url.Values{
		"title": {"  abcd  "},
	}, sessionCookie(t, user))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/projects/%d/testcases/new", project.ID), w.Header().Get("Location"))

	var count int64
	require.NoError(t, db.DB.Model(&models.TestCase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListTestCasesNewestFirst(t *testing.T) {
	r := setupRouter(t)
	user := createUser(t, "Alice", "alice@example.com", models.RoleTester)
	project := createProject(t, "Checkout Flow", user.ID)

	first := createTestCase(t, "First test case", project, user.ID)
	second := createTestCase(t, "Second test case", project, user.ID)

	w := doGet(r, fmt.Sprintf("/projects/%d/testcases", project.ID), sessionCookie(t, user))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TestCases []struct {
			ID uint `json:"id"`
		} `json:"test_cases"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.TestCases, 2)

	assert.Equal(t, second.ID, body.TestCases[0].ID)
	assert.Equal(t, first.ID, body.TestCases[1].ID)
}

func TestEditTestCaseOverwritesAllFields(t *testing.T) {
	r := setupRouter(t)
	creator := createUser(t, "Alice", "alice@example.com", models.RoleTester)
	editor := createUser(t, "Bob", "bob@example.com", models.RoleTester)
	project := createProject(t, "Checkout Flow", creator.ID)
	testCase := createTestCase(t, "Verify coupon code applies", project, creator.ID)

	// Edits carry no ownership restriction; any authenticated user may edit.
	w := doPostForm(r, fmt.Sprintf("/testcases/%d/edit", testCase.ID), url.Values{
		"title":       {"Verify coupon code rejected"},
		"description": {"negative path"},
		"priority":    {models.PriorityHigh},
		"status":      {models.TestCaseStatusFailed},
	}, sessionCookie(t, editor))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/projects/%d/testcases", project.ID), w.Header().Get("Location"))

	var reloaded models.TestCase
	require.NoError(t, db.DB.First(&reloaded, testCase.ID).Error)

	assert.Equal(t, "Verify coupon code rejected", reloaded.Title)
	assert.Equal(t, "negative path", reloaded.Description)
	assert.Equal(t, models.PriorityHigh, reloaded.Priority)
	assert.Equal(t, models.TestCaseStatusFailed, reloaded.Status)
}

func TestDeleteTestCaseForbiddenForOtherTester(t *testing.T) {
	r := setupRouter(t)
	creator := createUser(t, "Alice", "alice@example.com", models.RoleTester)
	stranger := createUser(t, "Bob", "bob@example.com", models.RoleTester)
	project := createProject(t, "Checkout Flow", creator.ID)
	testCase := createTestCase(t, "Verify coupon code applies", project, creator.ID)

	w := doPostForm(r, fmt.Sprintf("/testcases/%d/delete", testCase.ID), url.Values{}, sessionCookie(t, stranger))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/projects/%d/testcases", project.ID), w.Header().Get("Location"))

	var reloaded models.TestCase
	assert.NoError(t, db.DB.First(&reloaded, testCase.ID).Error)
}

func TestDeleteTestCaseAllowedForCreator(t *testing.T) {
	r := setupRouter(t)
	creator := createUser(t, "Alice", "alice@example.com", models.RoleTester)
	project := createProject(t, "Checkout Flow", creator.ID)
	testCase := createTestCase(t, "Verify coupon code applies", project, creator.ID)

	w := doPostForm(r, fmt.Sprintf("/testcases/%d/delete", testCase.ID), url.Values{}, sessionCookie(t, creator))

	assert.Equal(t, http.StatusFound, w.Code)

	var count int64
	require.NoError(t, db.DB.Model(&models.TestCase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteTestCaseAllowedForAdmin(t *testing.T) {
	r := setupRouter(t)
	creator := createUser(t, "Alice", "alice@example.com", models.RoleTester)
	admin := createUser(t, "Root", "root@example.com", models.RoleAdmin)
	project := createProject(t, "Checkout Flow", creator.ID)
	testCase := createTestCase(t, "Verify coupon code applies", project, creator.ID)

	w := doPostForm(r, fmt.Sprintf("/testcases/%d/delete", testCase.ID), url.Values{}, sessionCookie(t, admin))

	assert.Equal(t, http.StatusFound, w.Code)

	var count int64
	require.NoError(t, db.DB.Model(&models.TestCase{}).Count(&count).Error)
	assert.Zero(t, count)
}
