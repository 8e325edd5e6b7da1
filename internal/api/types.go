package api

import "github.com/hackgods/vitalpoint-assistant/internal/directory"

type ChatRequest struct {
	UserInput string `json:"userInput"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type DoctorsResponse struct {
	Doctors []directory.Doctor `json:"doctors"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
