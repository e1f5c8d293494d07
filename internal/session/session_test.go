package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"daily-report/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewCookieStore(Options{Secret: []byte("0123456789abcdef0123456789abcdef"), MaxAge: 3600})
}

// roundTrip saves the session on one request and returns a follow-up
// request carrying the resulting cookie.
func roundTrip(t *testing.T, store *Store, sess *Session) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, store.Save(w, r, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	return next
}

func TestStore_LoadNewSession(t *testing.T) {
	store := newTestStore()

	sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.True(t, sess.IsNew())
	assert.False(t, sess.IsDirty())

	_, ok := sess.Employee()
	assert.False(t, ok)
}

func TestStore_RoundTripsValues(t *testing.T) {
	store := newTestStore()

	sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetEmployee(domain.Employee{ID: 7, Name: "Sato"})
	sess.SetCSRFToken("token-1")
	sess.SetFlash("Report registered.")

	loaded, err := store.Load(roundTrip(t, store, sess))
	require.NoError(t, err)

	employee, ok := loaded.Employee()
	require.True(t, ok)
	assert.Equal(t, int64(7), employee.ID)
	assert.Equal(t, "Sato", employee.Name)
	assert.Equal(t, "token-1", loaded.CSRFToken())

	flash, ok := loaded.TakeFlash()
	assert.True(t, ok)
	assert.Equal(t, "Report registered.", flash)
}

func TestStore_SaveSkipsCleanSession(t *testing.T) {
	store := newTestStore()
	sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, store.Save(w, httptest.NewRequest(http.MethodGet, "/", nil), sess))
	assert.Empty(t, w.Result().Cookies())
}

func TestStore_LoadTamperedCookie(t *testing.T) {
	store := newTestStore()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})

	sess, err := store.Load(r)
	assert.Error(t, err)
	require.NotNil(t, sess)
	_, ok := sess.Employee()
	assert.False(t, ok)
}

func TestSession_TakeFlashConsumesOnce(t *testing.T) {
	store := newTestStore()
	sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	sess.SetFlash("Report updated.")

	msg, ok := sess.TakeFlash()
	assert.True(t, ok)
	assert.Equal(t, "Report updated.", msg)

	msg, ok = sess.TakeFlash()
	assert.False(t, ok)
	assert.Empty(t, msg)
}

func TestSession_TakeFlashAcrossRequests(t *testing.T) {
	store := newTestStore()
	sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetFlash("Report registered.")

	first, err := store.Load(roundTrip(t, store, sess))
	require.NoError(t, err)
	msg, ok := first.TakeFlash()
	require.True(t, ok)
	assert.Equal(t, "Report registered.", msg)
	assert.True(t, first.IsDirty())

	second, err := store.Load(roundTrip(t, store, first))
	require.NoError(t, err)
	_, ok = second.TakeFlash()
	assert.False(t, ok)
}

func TestSession_RemoveOnlyDirtiesExistingKeys(t *testing.T) {
	store := newTestStore()
	sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	sess.Remove("missing")
	assert.False(t, sess.IsDirty())

	sess.Put("k", "v")
	sess.Remove("k")
	assert.True(t, sess.IsDirty())
	_, ok := sess.Get("k")
	assert.False(t, ok)
}

func TestSession_EmployeeRejectsForeignValues(t *testing.T) {
	store := newTestStore()
	sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	sess.Put(KeyEmployee, "not an employee")
	_, ok := sess.Employee()
	assert.False(t, ok)

	sess.SetEmployee(domain.Employee{ID: 0})
	_, ok = sess.Employee()
	assert.False(t, ok)
}

func TestContextHelpers(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	store := newTestStore()
	sess, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	got, ok := FromContext(WithSession(context.Background(), sess))
	assert.True(t, ok)
	assert.Same(t, sess, got)
}
