package web

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/example/little-lemon/internal/internaltypes"
)

const draftName = "little_lemon_draft"

// draftTTL bounds how long a half-filled booking form survives.
const draftTTL = 7 * 24 * time.Hour

// DraftManager keeps an unfinished booking form in a signed, encrypted
// cookie so the visitor can come back to it.
type DraftManager struct{ sc *securecookie.SecureCookie }

func NewDraftManager(hashKey, blockKey []byte) *DraftManager {
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(draftTTL / time.Second))
	return &DraftManager{sc: sc}
}

func (d *DraftManager) Save(w http.ResponseWriter, draft bookingRequest) error {
	encoded, err := d.sc.Encode(draftName, draft)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name: draftName, Value: encoded, Path: "/",
		MaxAge:   int(draftTTL / time.Second),
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (d *DraftManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name: draftName, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, SameSite: http.SameSiteLaxMode,
	})
}

// Load returns internaltypes.ErrNotFound when there is no usable draft.
func (d *DraftManager) Load(r *http.Request) (bookingRequest, error) {
	c, err := r.Cookie(draftName)
	if err != nil {
		return bookingRequest{}, internaltypes.ErrNotFound
	}
	var draft bookingRequest
	if err := d.sc.Decode(draftName, c.Value, &draft); err != nil {
		return bookingRequest{}, internaltypes.ErrNotFound
	}
	return draft, nil
}
