package cart

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"storefront/internal/domain"
)

const (
	cartCookieName   = "cart"
	cartIDCookieName = "cartId"
)

// cookieStore keeps the stored cart in a pair of cookies scoped to the
// owning client: the serialized blob and the cart identity token. Both
// carry the same retention window so they expire together, and every Save
// refreshes both.
//
// Storage is keyed per browser session, so requests for one cart are not
// expected to race. If two tabs do race a quantity change, last write
// wins; that is an accepted limitation, not something solved with
// server-side locking.
type cookieStore struct {
	ttl    time.Duration
	secure bool
	logger *log.Logger
}

// NewCookieStore builds the cookie-backed cart repository.
func NewCookieStore(ttl time.Duration, secure bool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &cookieStore{ttl: ttl, secure: secure, logger: logger}
}

// Load reads the stored cart from the request. A blob that is missing,
// fails to decode, or fails schema validation reads as nil; a bad cookie
// must never break a storefront page. Non-positive quantities and
// duplicate lines are repaired on the way in.
func (s *cookieStore) Load(r *http.Request) *domain.StoredCart {
	c, err := r.Cookie(cartCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		s.logger.Printf("cart cookie: dropping undecodable blob: %v", err)
		return nil
	}
	var stored domain.StoredCart
	if err := json.Unmarshal(payload, &stored); err != nil {
		s.logger.Printf("cart cookie: dropping corrupt blob: %v", err)
		return nil
	}
	if stored.ID == "" || stored.Items == nil {
		s.logger.Printf("cart cookie: dropping blob failing schema validation")
		return nil
	}
	norm := stored.Normalize()
	return &norm
}

// Save writes the minimal representation and refreshes the identity token
// alongside it.
func (s *cookieStore) Save(w http.ResponseWriter, stored domain.StoredCart) error {
	payload, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	value := base64.RawURLEncoding.EncodeToString(payload)
	s.set(w, cartCookieName, value, int(s.ttl.Seconds()))
	s.set(w, cartIDCookieName, stored.ID, int(s.ttl.Seconds()))
	return nil
}

// Drop deletes both cart cookies.
func (s *cookieStore) Drop(w http.ResponseWriter) {
	s.set(w, cartCookieName, "", -1)
	s.set(w, cartIDCookieName, "", -1)
}

func (s *cookieStore) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
