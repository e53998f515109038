package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dim-stef/therapy-backend/internal/handlers"
)

func TestCreateReviewUniquePerTherapist(t *testing.T) {
	r := setupRouter(t)

	_, clientToken := createUser(t, "client@example.com", false)
	firstUser, _ := createUser(t, "first@example.com", true)
	secondUser, _ := createUser(t, "second@example.com", true)
	first := therapistFor(t, firstUser)
	second := therapistFor(t, secondUser)

	w := doJSON(t, r, http.MethodPost, "/api/reviews", clientToken, map[string]interface{}{
		"therapist_id": first.Surrogate,
		"stars":        5,
	})
	requireStatus(t, w, http.StatusCreated)

	// Second review for the same therapist fails.
	w = doJSON(t, r, http.MethodPost, "/api/reviews", clientToken, map[string]interface{}{
		"therapist_id": first.Surrogate,
		"stars":        1,
	})
	requireStatus(t, w, http.StatusBadRequest)

	// A different therapist is fine.
	w = doJSON(t, r, http.MethodPost, "/api/reviews", clientToken, map[string]interface{}{
		"therapist_id": second.Surrogate,
		"stars":        3,
	})
	requireStatus(t, w, http.StatusCreated)
}

func TestCreateReviewValidatesStars(t *testing.T) {
	r := setupRouter(t)

	_, clientToken := createUser(t, "client@example.com", false)
	therapistUser, _ := createUser(t, "therapist@example.com", true)
	therapist := therapistFor(t, therapistUser)

	for _, stars := range []int{0, 6} {
		w := doJSON(t, r, http.MethodPost, "/api/reviews", clientToken, map[string]interface{}{
			"therapist_id": therapist.Surrogate,
			"stars":        stars,
		})
		requireStatus(t, w, http.StatusBadRequest)
	}
}

func TestUpdateReviewReassignsTherapist(t *testing.T) {
	r := setupRouter(t)

	_, clientToken := createUser(t, "client@example.com", false)
	firstUser, _ := createUser(t, "first@example.com", true)
	secondUser, _ := createUser(t, "second@example.com", true)
	first := therapistFor(t, firstUser)
	second := therapistFor(t, secondUser)

	w := doJSON(t, r, http.MethodPost, "/api/reviews", clientToken, map[string]interface{}{
		"therapist_id": first.Surrogate,
		"stars":        2,
	})
	requireStatus(t, w, http.StatusCreated)

	var created handlers.ReviewResponse
	decodeBody(t, w, &created)

	w = doJSON(t, r, http.MethodPut, "/api/reviews/"+created.ID, clientToken, map[string]interface{}{
		"therapist_id": second.Surrogate,
		"stars":        4,
	})
	requireStatus(t, w, http.StatusOK)

	var updated handlers.ReviewResponse
	decodeBody(t, w, &updated)

	if updated.TherapistID != second.Surrogate {
		t.Fatalf("therapist = %q, want %q", updated.TherapistID, second.Surrogate)
	}
	if updated.Stars != 4 {
		t.Fatalf("stars = %d, want 4", updated.Stars)
	}

	// Unknown therapist surrogate on reassignment.
	w = doJSON(t, r, http.MethodPut, "/api/reviews/"+created.ID, clientToken, map[string]interface{}{
		"therapist_id": "does-not-exist",
	})
	requireStatus(t, w, http.StatusNotFound)
}

func TestListTherapistReviewsAggregates(t *testing.T) {
	r := setupRouter(t)

	_, firstToken := createUser(t, "client1@example.com", false)
	_, secondToken := createUser(t, "client2@example.com", false)
	therapistUser, _ := createUser(t, "therapist@example.com", true)
	therapist := therapistFor(t, therapistUser)

	for token, stars := range map[string]int{firstToken: 5, secondToken: 2} {
		w := doJSON(t, r, http.MethodPost, "/api/reviews", token, map[string]interface{}{
			"therapist_id": therapist.Surrogate,
			"stars":        stars,
		})
		requireStatus(t, w, http.StatusCreated)
	}

	w := doJSON(t, r, http.MethodGet, "/api/therapists/"+therapist.Surrogate+"/reviews", "", nil)
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Reviews       []handlers.ReviewResponse `json:"reviews"`
		AverageRating float64                   `json:"average_rating"`
		Count         int                       `json:"count"`
	}
	decodeBody(t, w, &resp)

	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.AverageRating != 3.5 {
		t.Fatalf("average = %v, want 3.5", resp.AverageRating)
	}
}
