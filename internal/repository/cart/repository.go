package cart

import (
	"net/http"

	"storefront/internal/domain"
)

// Repository is the durable storage for the minimal cart representation.
// Load never fails: absent, corrupt or expired state all read as "no
// cart".
type Repository interface {
	Load(r *http.Request) *domain.StoredCart
	Save(w http.ResponseWriter, stored domain.StoredCart) error
	Drop(w http.ResponseWriter)
}
