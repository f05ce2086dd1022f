package lending

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBorrowRequest(memberID, bookID string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/members/"+memberID+"/borrow/"+bookID, nil)
	r.SetPathValue("memberID", memberID)
	r.SetPathValue("bookID", bookID)
	return r
}

func newReturnRequest(memberID, bookID string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(http.MethodPost, "/members/"+memberID+"/return/"+bookID, &buf)
	r.Header.Set("Content-Type", "application/json")
	r.SetPathValue("memberID", memberID)
	r.SetPathValue("bookID", bookID)
	return r
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error.Code
}

func TestHTTPHandler_Borrow(t *testing.T) {
	tests := []struct {
		name           string
		memberID       string
		bookID         string
		setup          func(l *fakeLedger)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:     "success",
			memberID: "1", bookID: "5",
			setup: func(l *fakeLedger) {
				l.addMember(1)
				l.addBook(5)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:     "member missing",
			memberID: "9", bookID: "5",
			setup:          func(l *fakeLedger) { l.addBook(5) },
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:     "book missing",
			memberID: "1", bookID: "9",
			setup:          func(l *fakeLedger) { l.addMember(1) },
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:     "already borrowed",
			memberID: "2", bookID: "5",
			setup: func(l *fakeLedger) {
				l.addMember(1)
				l.addMember(2)
				l.addBook(5)
				holder := int64(1)
				l.books[5] = &holder
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:     "store conflict",
			memberID: "1", bookID: "5",
			setup: func(l *fakeLedger) {
				l.addMember(1)
				l.addBook(5)
				l.commitErr = ErrConflict
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONFLICT",
		},
		{
			name:     "non-numeric member id",
			memberID: "abc", bookID: "5",
			setup:          func(l *fakeLedger) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:     "zero book id",
			memberID: "1", bookID: "0",
			setup:          func(l *fakeLedger) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger()
			tt.setup(ledger)
			svc, _ := newTestService(ledger)
			handler := NewHTTPHandler(svc)

			w := httptest.NewRecorder()
			handler.Borrow(w, newBorrowRequest(tt.memberID, tt.bookID))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			}
		})
	}
}

func TestHTTPHandler_Return(t *testing.T) {
	setup := func(l *fakeLedger) {
		l.addMember(1)
		l.addMember(2)
		l.addBook(5)
		holder := int64(1)
		l.books[5] = &holder
		at := testTime
		l.records = append(l.records, record{id: 1, bookID: 5, memberID: 1, borrowedAt: at})
		l.nextID = 2
	}

	tests := []struct {
		name           string
		memberID       string
		bookID         string
		body           any
		expectedStatus int
		expectedCode   string
	}{
		{
			name:     "success",
			memberID: "1", bookID: "5",
			body:           map[string]int{"score": 8},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:     "score zero is a valid rating",
			memberID: "1", bookID: "5",
			body:           map[string]int{"score": 0},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:     "not borrowed by this member",
			memberID: "2", bookID: "5",
			body:           map[string]int{"score": 5},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:     "score above range rejected before the engine",
			memberID: "1", bookID: "5",
			body:           map[string]int{"score": 11},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:     "missing score",
			memberID: "1", bookID: "5",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:     "invalid body",
			memberID: "1", bookID: "5",
			body:           nil,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger()
			setup(ledger)
			svc, _ := newTestService(ledger)
			handler := NewHTTPHandler(svc)

			w := httptest.NewRecorder()
			handler.Return(w, newReturnRequest(tt.memberID, tt.bookID, tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			}
		})
	}

	t.Run("out of range score leaves the ledger untouched", func(t *testing.T) {
		ledger := newFakeLedger()
		setup(ledger)
		svc, _ := newTestService(ledger)
		handler := NewHTTPHandler(svc)

		w := httptest.NewRecorder()
		handler.Return(w, newReturnRequest("1", "5", map[string]int{"score": 11}))

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, ledger.txCount)
		assert.Nil(t, ledger.records[0].returnedAt)
	})
}
