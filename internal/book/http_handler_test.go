package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerWithMock(t *testing.T) (*HTTPHandler, *MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockRepository(ctrl)
	return NewHTTPHandler(NewService(mockRepo, newMemoryCache())), mockRepo
}

func TestHTTPHandler_List(t *testing.T) {
	testBook := Book{ID: 5, Title: "On Rivers", Author: "Grace Hopper", Year: 1984}

	t.Run("success with pagination meta", func(t *testing.T) {
		handler, mockRepo := newHandlerWithMock(t)
		mockRepo.EXPECT().
			List(gomock.Any(), Query{Search: "rivers", AvailableOnly: true, Limit: 5, Offset: 10}).
			Return([]Book{testBook}, 21, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?search=rivers&available=true&page=3&limit=5", nil)

		handler.List(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []Book `json:"data"`
			Meta struct {
				Total      int `json:"total"`
				TotalPages int `json:"total_pages"`
				Page       int `json:"page"`
			} `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Len(t, body.Data, 1)
		assert.Equal(t, 21, body.Meta.Total)
		assert.Equal(t, 5, body.Meta.TotalPages)
		assert.Equal(t, 3, body.Meta.Page)
	})

	t.Run("defaults applied for missing paging params", func(t *testing.T) {
		handler, mockRepo := newHandlerWithMock(t)
		mockRepo.EXPECT().
			List(gomock.Any(), Query{Limit: 10, Offset: 0}).
			Return([]Book{}, 0, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/books", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("oversized limit falls back to default", func(t *testing.T) {
		handler, mockRepo := newHandlerWithMock(t)
		mockRepo.EXPECT().
			List(gomock.Any(), Query{Limit: 10, Offset: 0}).
			Return([]Book{}, 0, nil)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/books?limit=500", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("repo error", func(t *testing.T) {
		handler, mockRepo := newHandlerWithMock(t)
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/books", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_GetByID(t *testing.T) {
	makeRequest := func(id string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/books/"+id, nil)
		r.SetPathValue("bookID", id)
		return r
	}

	t.Run("success", func(t *testing.T) {
		handler, mockRepo := newHandlerWithMock(t)
		mockRepo.EXPECT().GetDetail(gomock.Any(), int64(5)).
			Return(Detail{ID: 5, Title: "On Rivers", Score: UnratedScore}, nil)

		w := httptest.NewRecorder()
		handler.GetByID(w, makeRequest("5"))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data Detail `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, int64(5), body.Data.ID)
		assert.Equal(t, float64(UnratedScore), body.Data.Score)
	})

	t.Run("not found", func(t *testing.T) {
		handler, mockRepo := newHandlerWithMock(t)
		mockRepo.EXPECT().GetDetail(gomock.Any(), int64(5)).Return(Detail{}, ErrNotFound)

		w := httptest.NewRecorder()
		handler.GetByID(w, makeRequest("5"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		handler, _ := newHandlerWithMock(t)

		for _, id := range []string{"abc", "0", "-3"} {
			w := httptest.NewRecorder()
			handler.GetByID(w, makeRequest(id))
			assert.Equal(t, http.StatusBadRequest, w.Code, "id=%s", id)
		}
	})
}
