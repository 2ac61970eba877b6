package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/marcoguerrero/cartkeeper/api/responses"
	"github.com/marcoguerrero/cartkeeper/api/validators"
	cartsvc "github.com/marcoguerrero/cartkeeper/internal/cart"
	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
	"github.com/marcoguerrero/cartkeeper/pkg/logger"
	"github.com/marcoguerrero/cartkeeper/pkg/types"
)

// ShippingRequest is the POST /shipping/{id} payload. Pointer fields make
// "absent" distinguishable from zero: free shipping and zero distance are
// accepted, a missing field is rejected.
type ShippingRequest struct {
	Distance *decimal.Decimal `json:"distance" validate:"required"`
	Cost     *decimal.Decimal `json:"cost" validate:"required"`
	Location *string          `json:"location" validate:"required"`
}

// CartFetch returns the cart document for the given id.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cartID := chi.URLParam(r, "cartID")
		if logg != nil {
			ctx = logg.WithCartID(ctx, cartID)
		}

		cart, err := svc.Get(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartDelete removes the cart. Deleting an absent cart responds not-found,
// not a server error.
func CartDelete(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cartID := chi.URLParam(r, "cartID")
		if logg != nil {
			ctx = logg.WithCartID(ctx, cartID)
		}

		existed, err := svc.Delete(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !existed {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart "+cartID+" not found"))
			return
		}
		responses.WriteSuccess(w, types.StatusPayload{Status: "ok"})
	}
}

// CartRename moves the cart from one id to another.
func CartRename(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		fromID := chi.URLParam(r, "fromID")
		toID := chi.URLParam(r, "toID")
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"cart_id": fromID, "rename_to": toID})
		}

		cart, err := svc.Rename(ctx, fromID, toID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartAddItem adds qty units of a SKU to the cart, creating the cart when absent.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cartID := chi.URLParam(r, "cartID")
		sku := chi.URLParam(r, "sku")
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"cart_id": cartID, "sku": sku})
		}

		qty, err := parseQty(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cart, err := svc.AddItem(ctx, cartID, sku, qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartUpdateItem sets the quantity of an existing line; zero removes it.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cartID := chi.URLParam(r, "cartID")
		sku := chi.URLParam(r, "sku")
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"cart_id": cartID, "sku": sku})
		}

		qty, err := parseQty(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cart, err := svc.UpdateItem(ctx, cartID, sku, qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartShipping attaches or accumulates a shipping record on the cart.
func CartShipping(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		cartID := chi.URLParam(r, "cartID")
		if logg != nil {
			ctx = logg.WithCartID(ctx, cartID)
		}

		var payload ShippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		cart, err := svc.AddShipping(ctx, cartID, cartsvc.ShippingInput{
			Distance: payload.Distance,
			Cost:     payload.Cost,
			Location: payload.Location,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func parseQty(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "qty")
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "qty must be an integer").
			WithDetails(map[string]any{"qty": raw})
	}
	return qty, nil
}
