package transfer

type IdeaRequest struct {
	Niche       string `json:"niche"`
	Description string `json:"description"`
}

type CaptionRequest struct {
	Prompt string `json:"prompt"`
}

type CaptionResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type VideoRequest struct {
	ImageURL string `json:"image_url"`
	PostID   int64  `json:"post_id"`
	Duration int    `json:"duration"`
}
