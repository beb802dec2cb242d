package transfer

type PostSave struct {
	Prompt   string `json:"prompt"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type PostUpdate struct {
	ID      int64   `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type PostDelete struct {
	ID int64 `json:"id"`
}

type PublishRequest struct {
	PostID int64 `json:"post_id"`
}

type SetActiveRequest struct {
	AccountID string `json:"account_id"`
}
