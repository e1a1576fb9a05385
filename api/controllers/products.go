package controllers

import (
	"net/http"

	"github.com/angelmondragon/pizzeria/api/responses"
	"github.com/angelmondragon/pizzeria/api/validators"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

// ListProducts serves the catalog as {"product": [...]}, the document the
// storefront loads its menu from.
func ListProducts(source catalog.Source, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if source == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		cat, err := source.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"product": cat})
	}
}

// GetProduct serves one catalog item.
func GetProduct(source catalog.Source, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if source == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cat, err := source.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, ok := cat.Find(productID)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		responses.WriteSuccess(w, item)
	}
}
