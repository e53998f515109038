package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dim-stef/therapy-backend/db"
	"github.com/dim-stef/therapy-backend/internal/handlers"
	"github.com/dim-stef/therapy-backend/internal/models"
)

func TestReplaceAvailabilityWholesale(t *testing.T) {
	r := setupRouter(t)

	therapistUser, therapistToken := createUser(t, "therapist@example.com", true)
	therapist := therapistFor(t, therapistUser)

	// Pre-existing windows that must be gone after the replacement.
	old := []models.AvailableTimeRange{
		{TherapistID: therapist.ID, Weekday: 1, Start: "08:00", End: "12:00"},
		{TherapistID: therapist.ID, Weekday: 2, Start: "08:00", End: "12:00"},
	}
	for i := range old {
		if err := db.DB.Create(&old[i]).Error; err != nil {
			t.Fatalf("seed window: %v", err)
		}
	}

	w := doJSON(t, r, http.MethodPut, "/api/therapist/availability", therapistToken, map[string]interface{}{
		"windows": []map[string]interface{}{
			{"weekday": 3, "start": "10:00", "end": "14:00"},
			{"weekday": 4, "start": "10:00", "end": "14:00"},
			{"weekday": 5, "start": "16:00", "end": "18:00"},
		},
	})
	requireStatus(t, w, http.StatusOK)

	var windows []models.AvailableTimeRange
	if err := db.DB.Where("therapist_id = ?", therapist.ID).Order("weekday").Find(&windows).Error; err != nil {
		t.Fatalf("load windows: %v", err)
	}

	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	for i, weekday := range []int{3, 4, 5} {
		if windows[i].Weekday != weekday {
			t.Fatalf("window %d weekday = %d, want %d", i, windows[i].Weekday, weekday)
		}
	}
}

func TestReplaceAvailabilityWithEmptyList(t *testing.T) {
	r := setupRouter(t)

	therapistUser, therapistToken := createUser(t, "therapist@example.com", true)
	therapist := therapistFor(t, therapistUser)

	seed := models.AvailableTimeRange{TherapistID: therapist.ID, Weekday: 1, Start: "08:00", End: "12:00"}
	if err := db.DB.Create(&seed).Error; err != nil {
		t.Fatalf("seed window: %v", err)
	}

	w := doJSON(t, r, http.MethodPut, "/api/therapist/availability", therapistToken, map[string]interface{}{
		"windows": []map[string]interface{}{},
	})
	requireStatus(t, w, http.StatusOK)

	var count int64
	if err := db.DB.Model(&models.AvailableTimeRange{}).Where("therapist_id = ?", therapist.ID).Count(&count).Error; err != nil {
		t.Fatalf("count windows: %v", err)
	}
	if count != 0 {
		t.Fatalf("got %d windows, want 0", count)
	}
}

func TestReplaceAvailabilityValidation(t *testing.T) {
	r := setupRouter(t)

	_, therapistToken := createUser(t, "therapist@example.com", true)

	cases := []map[string]interface{}{
		{"weekday": 8, "start": "10:00", "end": "14:00"},
		{"weekday": 3, "start": "25:00", "end": "14:00"},
		{"weekday": 3, "start": "14:00", "end": "10:00"},
	}

	for _, window := range cases {
		w := doJSON(t, r, http.MethodPut, "/api/therapist/availability", therapistToken, map[string]interface{}{
			"windows": []map[string]interface{}{window},
		})
		requireStatus(t, w, http.StatusBadRequest)
	}
}

func TestReplaceAvailabilityRequiresTherapist(t *testing.T) {
	r := setupRouter(t)

	_, clientToken := createUser(t, "client@example.com", false)

	w := doJSON(t, r, http.MethodPut, "/api/therapist/availability", clientToken, map[string]interface{}{
		"windows": []map[string]interface{}{},
	})
	requireStatus(t, w, http.StatusForbidden)
}

func TestListTherapistsIncludesProfileAndRating(t *testing.T) {
	r := setupRouter(t)

	_, clientToken := createUser(t, "client@example.com", false)
	therapistUser, therapistToken := createUser(t, "therapist@example.com", true)
	therapist := therapistFor(t, therapistUser)

	w := doJSON(t, r, http.MethodPut, "/api/therapist", therapistToken, map[string]interface{}{
		"bio":         "CBT practitioner",
		"specialties": []string{"anxiety", "depression"},
	})
	requireStatus(t, w, http.StatusOK)

	w = doJSON(t, r, http.MethodPost, "/api/reviews", clientToken, map[string]interface{}{
		"therapist_id": therapist.Surrogate,
		"stars":        4,
	})
	requireStatus(t, w, http.StatusCreated)

	w = doJSON(t, r, http.MethodGet, "/api/therapists", "", nil)
	requireStatus(t, w, http.StatusOK)

	var resp []handlers.TherapistSummary
	decodeBody(t, w, &resp)

	if len(resp) != 1 {
		t.Fatalf("got %d therapists, want 1", len(resp))
	}

	got := resp[0]

	if got.ID != therapist.Surrogate {
		t.Fatalf("id = %q, want %q", got.ID, therapist.Surrogate)
	}
	if got.Name != therapistUser.Name {
		t.Fatalf("name = %q, want %q", got.Name, therapistUser.Name)
	}
	if got.Bio != "CBT practitioner" {
		t.Fatalf("bio = %q", got.Bio)
	}
	if got.Status != models.TherapistStatusInactive {
		t.Fatalf("status = %q, want %q", got.Status, models.TherapistStatusInactive)
	}
	if len(got.Specialties) != 2 {
		t.Fatalf("specialties = %v", got.Specialties)
	}
	if got.AverageRating != 4 || got.ReviewCount != 1 {
		t.Fatalf("rating = %v (%d reviews), want 4 (1 review)", got.AverageRating, got.ReviewCount)
	}
}
