package subject

type SubjectResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Position string `json:"position,omitempty"`
}

func ToResponse(s Subject) SubjectResponse {
	return SubjectResponse{
		ID:       s.ID,
		Name:     s.Name,
		Email:    s.Email,
		Position: s.Position,
	}
}
