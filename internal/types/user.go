package types

type UserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar,omitempty"`
	IsTherapist bool   `json:"is_therapist"`
}
