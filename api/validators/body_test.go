package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
)

type shippingBody struct {
	Distance *decimal.Decimal `json:"distance" validate:"required"`
	Cost     *decimal.Decimal `json:"cost" validate:"required"`
	Location *string          `json:"location" validate:"required"`
}

func newBodyRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/shipping/c1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDecodeJSONBodyValid(t *testing.T) {
	var dest shippingBody
	err := DecodeJSONBody(newBodyRequest(`{"distance":"12.5","cost":"4.99","location":"depot"}`), &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dest.Distance == nil || !dest.Distance.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected distance %v", dest.Distance)
	}
	if dest.Location == nil || *dest.Location != "depot" {
		t.Fatalf("unexpected location %v", dest.Location)
	}
}

func TestDecodeJSONBodyZeroValuesPassRequired(t *testing.T) {
	var dest shippingBody
	err := DecodeJSONBody(newBodyRequest(`{"distance":"0","cost":"0","location":""}`), &dest)
	if err != nil {
		t.Fatalf("zero values behind pointers must satisfy required, got: %v", err)
	}
	if !dest.Cost.IsZero() {
		t.Fatalf("unexpected cost %v", dest.Cost)
	}
}

func TestDecodeJSONBodyMissingField(t *testing.T) {
	var dest shippingBody
	err := DecodeJSONBody(newBodyRequest(`{"distance":"10","location":"depot"}`), &dest)

	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["cost"] != "is required" {
		t.Fatalf("details should name the json field, got %v", details)
	}
}

func TestDecodeJSONBodyMalformed(t *testing.T) {
	var dest shippingBody
	err := DecodeJSONBody(newBodyRequest(`{"distance":`), &dest)

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyUnknownField(t *testing.T) {
	var dest shippingBody
	err := DecodeJSONBody(newBodyRequest(`{"distance":"1","cost":"1","location":"a","tip":"2"}`), &dest)

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown fields must be rejected, got %v", err)
	}
}
