package dto

// LikeResponse reports the like state after a toggle or state read.
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// LikeCountResponse carries the live like count of one entity.
type LikeCountResponse struct {
	Count int64 `json:"count"`
}

// ViewResponse reports whether a view registration was counted or deduped.
type ViewResponse struct {
	Counted bool `json:"counted"`
}

// MessageResponse is a generic response for success/error messages.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
