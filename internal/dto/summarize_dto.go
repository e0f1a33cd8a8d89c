package dto

type SummarizeRequest struct {
	Content string `json:"content"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// SummarizeErrorResponse is the body of every non-2xx answer from /api/summarize.
type SummarizeErrorResponse struct {
	Error string `json:"error"`
}
