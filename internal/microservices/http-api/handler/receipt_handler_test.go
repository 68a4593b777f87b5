package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coquiz/internal/bridge"
	"coquiz/internal/microservices/http-api/dto"
	"coquiz/internal/receipts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockReceiptRepository mocks the receipts.Repository interface
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Record(ctx context.Context, memberID string, p bridge.Purchase) error {
	return m.Called(memberID, p).Error(0)
}

func (m *MockReceiptRepository) FindByTransaction(ctx context.Context, transactionID string) (*receipts.Receipt, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receipts.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) ListByMember(ctx context.Context, memberID string, limit int) ([]receipts.Receipt, error) {
	args := m.Called(memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]receipts.Receipt), args.Error(1)
}

func receiptRouter(repo receipts.Repository) http.Handler {
	h := NewReceiptHandler(repo)
	router := setupRouter()
	router.GET("/receipts/:transaction_id", h.GetByTransaction)
	router.GET("/members/:mb_id/receipts", h.ListByMember)
	return router
}

func serve(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetByTransaction_Success(t *testing.T) {
	repo := new(MockReceiptRepository)
	repo.On("FindByTransaction", "tx-1").Return(&receipts.Receipt{
		ID:            1,
		TransactionID: "tx-1",
		MemberID:      "42",
		ProductID:     "coin_100",
		Platform:      "android",
		Receipt:       "secret-token",
	}, nil)

	w := serve(receiptRouter(repo), "/receipts/tx-1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"product_id":"coin_100"`)
	assert.NotContains(t, w.Body.String(), "secret-token")
	repo.AssertExpectations(t)
}

func TestGetByTransaction_NotFound(t *testing.T) {
	repo := new(MockReceiptRepository)
	repo.On("FindByTransaction", "missing").Return(nil, receipts.ErrNotFound)

	w := serve(receiptRouter(repo), "/receipts/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByTransaction_Error(t *testing.T) {
	repo := new(MockReceiptRepository)
	repo.On("FindByTransaction", "tx-1").Return(nil, errors.New("connection refused"))

	w := serve(receiptRouter(repo), "/receipts/tx-1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestListByMember(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
	}{
		{"default limit", "", defaultReceiptLimit},
		{"explicit limit", "?limit=5", 5},
		{"capped limit", "?limit=1000", maxReceiptLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockReceiptRepository)
			repo.On("ListByMember", "42", tt.wantLimit).Return([]receipts.Receipt{
				{TransactionID: "tx-2", MemberID: "42"},
				{TransactionID: "tx-1", MemberID: "42"},
			}, nil)

			w := serve(receiptRouter(repo), "/members/42/receipts"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)

			var resp dto.ReceiptListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "42", resp.MemberID)
			assert.Equal(t, 2, resp.Count)
			assert.Equal(t, "tx-2", resp.Receipts[0].TransactionID)
			repo.AssertExpectations(t)
		})
	}
}

func TestListByMember_BadLimit(t *testing.T) {
	repo := new(MockReceiptRepository)
	for _, q := range []string{"?limit=0", "?limit=-3", "?limit=abc"} {
		w := serve(receiptRouter(repo), "/members/42/receipts"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	repo.AssertNotCalled(t, "ListByMember", mock.Anything, mock.Anything)
}
