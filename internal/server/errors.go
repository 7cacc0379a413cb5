package server

import (
	"net/http"

	"github.com/go-chi/render"

	"MarketMovers/internal/model"
)

// ErrResponse is an RFC 7807 problem body.
type ErrResponse struct {
	Type    string        `json:"type"`
	Title   string        `json:"title"`
	Status  int           `json:"status"`
	Detail  string        `json:"detail,omitempty"`
	Outcome model.Outcome `json:"outcome,omitempty"`
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Status)
	return nil
}

// StatusFor maps a run outcome to an HTTP status.
func StatusFor(o model.Outcome) int {
	switch o {
	case model.OutcomeOK:
		return http.StatusOK
	case model.OutcomeNoSymbols, model.OutcomeInvalidRange:
		return http.StatusBadRequest
	case model.OutcomeEmpty:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func ErrInvalidQuery(err error) *ErrResponse {
	return &ErrResponse{
		Type:   "/problems/invalid-query",
		Title:  "Invalid query parameters",
		Status: http.StatusBadRequest,
		Detail: err.Error(),
	}
}

func ErrOutcome(rep *model.Report) *ErrResponse {
	return &ErrResponse{
		Type:    "/problems/report-" + string(rep.Outcome),
		Title:   "Report not available",
		Status:  StatusFor(rep.Outcome),
		Detail:  rep.Message,
		Outcome: rep.Outcome,
	}
}

func ErrInternal(err error) *ErrResponse {
	return &ErrResponse{
		Type:   "/problems/internal",
		Title:  "Internal error",
		Status: http.StatusInternalServerError,
		Detail: err.Error(),
	}
}
