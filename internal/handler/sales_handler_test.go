package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mini-pos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSalesHandler_Checkout(t *testing.T) {
	saleID := uuid.New()

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.CheckoutResult
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"cart":[{"id":1,"quantity":2}],"payment_method":"cash"}`,
			mockReturn:     &model.CheckoutResult{SaleID: saleID, Total: 20},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Empty cart",
			body:           `{"cart":[],"payment_method":"cash"}`,
			mockError:      model.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Insufficient stock",
			body:           `{"cart":[{"id":1,"quantity":10}],"payment_method":"cash"}`,
			mockError:      &model.InsufficientStockError{ProductID: 1, ProductName: "Soap", Requested: 10, Available: 5},
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Unknown product",
			body:           `{"cart":[{"id":99,"quantity":1}],"payment_method":"cash"}`,
			mockError:      &model.ProductNotFoundError{ProductID: 99},
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Credit without customer",
			body:           `{"cart":[{"id":1,"quantity":1}],"payment_method":"credit"}`,
			mockError:      model.ErrCustomerNameRequired,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
			expectService:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			if tt.expectService {
				svc.On("Checkout", mock.Anything, mock.AnythingOfType("*model.CheckoutRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			handler := NewSalesHandler(svc, zerolog.Nop())
			req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.Checkout(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, true, resp["success"])
				assert.Equal(t, saleID.String(), resp["sale_id"])
				assert.Equal(t, 20.0, resp["total"])
			} else {
				assert.Equal(t, false, resp["success"])
				assert.NotEmpty(t, resp["message"])
			}

			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "Checkout")
			}
		})
	}
}

func TestSalesHandler_Checkout_PassesCart(t *testing.T) {
	svc := new(MockCheckoutService)
	customer := "Amina"
	expected := &model.CheckoutRequest{
		Cart:          []model.CartLine{{ID: 1, Quantity: 2}, {ID: 3, Quantity: 1}},
		PaymentMethod: model.PaymentCredit,
		CustomerName:  &customer,
	}
	svc.On("Checkout", mock.Anything, expected).Return(&model.CheckoutResult{SaleID: uuid.New(), Total: 7.5}, nil)

	handler := NewSalesHandler(svc, zerolog.Nop())
	body := `{"cart":[{"id":1,"quantity":2},{"id":3,"quantity":1}],"payment_method":"credit","customer_name":"Amina"}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	handler.Checkout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSalesHandler_Cart(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockReturn     *model.CartPreview
		mockError      error
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"product_id":1,"quantity":2}`,
			mockReturn: &model.CartPreview{
				Success:     true,
				ProductID:   1,
				ProductName: "Soap",
				Quantity:    2,
				Price:       10,
				TotalPrice:  20,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not enough stock",
			body:           `{"product_id":1,"quantity":50}`,
			mockError:      &model.InsufficientStockError{ProductID: 1, ProductName: "Soap", Requested: 50, Available: 5},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Unknown product",
			body:           `{"product_id":9,"quantity":1}`,
			mockError:      &model.ProductNotFoundError{ProductID: 9},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCheckoutService)
			svc.On("PreviewLine", mock.Anything, mock.AnythingOfType("int64"), mock.AnythingOfType("int")).
				Return(tt.mockReturn, tt.mockError)

			handler := NewSalesHandler(svc, zerolog.Nop())
			req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.Cart(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockReturn != nil {
				var preview model.CartPreview
				require.NoError(t, json.NewDecoder(w.Body).Decode(&preview))
				assert.Equal(t, *tt.mockReturn, preview)
			}
			svc.AssertExpectations(t)
		})
	}
}
