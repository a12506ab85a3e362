package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emcon-server/internal/handlers"
	"emcon-server/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func newTestContext(t *testing.T, method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestDeleteUser_CascadesAllUserData(t *testing.T) {
	db, mock := newMockDB(t)
	handler := handlers.NewUserHandler(db)

	photoPath := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(photoPath, []byte("jpeg"), 0o644))

	userID := "11111111-1111-1111-1111-111111111111"
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow(userID, "user"))
	mock.ExpectQuery("SELECT (.+) FROM `profile_photos`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "file_path"}).
			AddRow("photo-id", userID, photoPath))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT `hospital_id` FROM `reviews`").
		WillReturnRows(sqlmock.NewRows([]string{"hospital_id"}))
	mock.ExpectExec("DELETE FROM `reviews`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `refresh_tokens`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `medical_cards`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `profile_photos`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `blood_requests`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `accepted_blood_requests`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `hospital_admin_profiles`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, w := newTestContext(t, http.MethodDelete, "")
	c.Params = gin.Params{{Key: "id", Value: userID}}

	handler.DeleteUser(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
	require.NoFileExists(t, photoPath)
}

func TestCreateBloodRequest_RejectsOtherHospital(t *testing.T) {
	db, mock := newMockDB(t)
	handler := handlers.NewBloodRequestHandler(db)

	c, w := newTestContext(t, http.MethodPost,
		`{"hospitalId":"hospital-b","bloodType":"A+","units":2}`)
	c.Set("userRole", models.RoleHospitalAdmin)
	c.Set("adminProfile", &models.HospitalAdminProfile{
		HospitalID:        "hospital-a",
		CanManageRequests: true,
	})

	handler.CreateBloodRequest(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	// Nothing may be written on a cross-hospital attempt.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBloodRequest_RequiresManagePermission(t *testing.T) {
	db, mock := newMockDB(t)
	handler := handlers.NewBloodRequestHandler(db)

	c, w := newTestContext(t, http.MethodPost,
		`{"hospitalId":"hospital-a","bloodType":"A+","units":2}`)
	c.Set("userRole", models.RoleHospitalAdmin)
	c.Set("adminProfile", &models.HospitalAdminProfile{HospitalID: "hospital-a"})

	handler.CreateBloodRequest(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
