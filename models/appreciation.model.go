package models

type AppreciationRequest struct {
	CourseType CourseType `json:"course_type"`
}

type AppreciationResponse struct {
	AppreciationMessage string `json:"appreciation_message"`
}
