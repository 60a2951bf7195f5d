// Package dto defines request/response types for the HTTP API.
package dto

// IDResponse is returned from create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListQuery carries common pagination parameters.
type ListQuery struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset"`
}
