package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/auth"
	"github.com/dim-stef/therapy-backend/internal/models"
	"github.com/dim-stef/therapy-backend/internal/router"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("init jwt secret: %v", err)
	}

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Therapist{},
		&models.TherapistSpecialty{},
		&models.AvailableTimeRange{},
		&models.TherapySession{},
		&models.Review{},
		&models.PaymentEvent{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	db.DB = gdb

	return router.NewRouter()
}

// createUser inserts a user with its profile (and therapist record when
// asked) and returns the user plus a valid bearer token.
func createUser(t *testing.T, email string, isTherapist bool) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := models.User{Name: "Test User", Email: email, PasswordHash: string(hash)}

	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	profile := models.Profile{UserID: user.ID, Name: user.Name, IsTherapist: isTherapist}

	if err := db.DB.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}

	if isTherapist {
		therapist := models.Therapist{UserID: user.ID}
		if err := db.DB.Create(&therapist).Error; err != nil {
			t.Fatalf("create therapist: %v", err)
		}
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		t.Fatalf("generate jwt: %v", err)
	}

	return user, token
}

func therapistFor(t *testing.T, user models.User) models.Therapist {
	t.Helper()

	var therapist models.Therapist

	if err := db.DB.Where("user_id = ?", user.ID).First(&therapist).Error; err != nil {
		t.Fatalf("load therapist: %v", err)
	}

	return therapist
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}
