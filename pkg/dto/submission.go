package dto

type SubmitRequest struct {
	SubmissionURL string `json:"submission_url" validate:"required,url,max=2048"`
}
