package lending

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lendapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type returnRequest struct {
	Score *int `json:"score" validate:"required,min=0,max=10"`
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// Borrow handles POST /members/{memberID}/borrow/{bookID}
func (h *HTTPHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(r, "memberID")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid member ID", []httpx.ErrorDetail{
			{Field: "memberID", Message: "must be a positive integer"},
		})
		return
	}
	bookID, ok := pathID(r, "bookID")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book ID", []httpx.ErrorDetail{
			{Field: "bookID", Message: "must be a positive integer"},
		})
		return
	}

	if err := h.service.Borrow(r.Context(), memberID, bookID); err != nil {
		switch {
		case errors.Is(err, ErrMemberNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Member not found", nil)
		case errors.Is(err, ErrBookNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		case errors.Is(err, ErrAlreadyBorrowed):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Book is already borrowed", nil)
		case errors.Is(err, ErrConflict):
			httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "Concurrent update, retry the request", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// Return handles POST /members/{memberID}/return/{bookID}
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(r, "memberID")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid member ID", []httpx.ErrorDetail{
			{Field: "memberID", Message: "must be a positive integer"},
		})
		return
	}
	bookID, ok := pathID(r, "bookID")
	if !ok {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid book ID", []httpx.ErrorDetail{
			{Field: "bookID", Message: "must be a positive integer"},
		})
		return
	}

	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	if err := h.service.Return(r.Context(), memberID, bookID, *req.Score); err != nil {
		switch {
		case errors.Is(err, ErrNotBorrowedByMember):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Book is not borrowed by this member", nil)
		case errors.Is(err, ErrNoOpenRecord):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No active borrow record found", nil)
		case errors.Is(err, ErrInvalidScore):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Score must be between 0 and 10", nil)
		case errors.Is(err, ErrConflict):
			httpx.JSONError(w, r, http.StatusConflict, "CONFLICT", "Concurrent update, retry the request", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}

	httpx.JSONSuccessNoContent(w)
}
