package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagepass/cache"
	"stagepass/config"
	"stagepass/middleware"
	"stagepass/models"
	"stagepass/session"
	"stagepass/store"
)

type testServer struct {
	router   *httprouter.Router
	sessions *session.Registry
	store    *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mem := store.NewMemory([]models.Show{{
		ID: "s1", Title: "Avengers", Price: 250, TotalSeats: 4,
		BookedSeats: []string{},
		SeatLayout:  models.SeatLayout{Rows: 2, Cols: 2},
	}})
	c := cache.New(config.Redis{Addr: "127.0.0.1:1"})
	sessions := session.NewRegistry(c, time.Hour)
	svc := NewService(mem, c, nil)
	api := NewAPI(svc)
	am := middleware.NewAuth(sessions)

	router := httprouter.New()
	router.GET("/api/shows", api.HandleListShows)
	router.GET("/api/shows/:id/seats", api.HandleGetSeats)
	router.POST("/api/bookings", am.Authenticate(api.HandleReserve))
	router.GET("/api/user/bookings", am.Authenticate(api.HandleUserBookings))
	router.POST("/api/bookings/:id/cancel", am.Authenticate(api.HandleCancel))
	router.POST("/api/payments", api.HandlePayment)

	return &testServer{router: router, sessions: sessions, store: mem}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestListShowsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/shows", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var views []models.ShowView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, 4, views[0].AvailableSeats)
}

func TestGetSeatsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/shows/s1/seats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(4), body["totalSeats"])

	w = ts.do(t, http.MethodGet, "/api/shows/nope/seats", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReserveEndpointRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/bookings", "", map[string]interface{}{
		"showId": "s1", "selectedSeats": []string{"R1C1"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/bookings", "bogus-token", map[string]interface{}{
		"showId": "s1", "selectedSeats": []string{"R1C1"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.sessions.Issue(context.Background(), "alice@x.com")

	// reserve
	w := ts.do(t, http.MethodPost, "/api/bookings", token, map[string]interface{}{
		"showId": "s1", "selectedSeats": []string{"R1C1", "R1C2"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	bookingID, _ := body["bookingId"].(string)
	require.NotEmpty(t, bookingID)
	assert.Equal(t, float64(500), body["amount"])

	// conflicting reserve
	w = ts.do(t, http.MethodPost, "/api/bookings", token, map[string]interface{}{
		"showId": "s1", "selectedSeats": []string{"R1C2"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// listing reflects the reservation
	w = ts.do(t, http.MethodGet, "/api/shows", "", nil)
	var views []models.ShowView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	assert.Equal(t, 2, views[0].AvailableSeats)

	// payment without the confirm signal leaves the booking pending
	w = ts.do(t, http.MethodPost, "/api/payments", "", map[string]interface{}{
		"bookingId": bookingID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// payment with the confirm signal
	w = ts.do(t, http.MethodPost, "/api/payments", "", map[string]interface{}{
		"bookingId": bookingID, "bypass": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusConfirmed, decodeBody(t, w)["status"])

	// user bookings
	w = ts.do(t, http.MethodGet, "/api/user/bookings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bookings []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, models.StatusConfirmed, bookings[0].Status)

	// cancel
	w = ts.do(t, http.MethodPost, "/api/bookings/"+bookingID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// seats are free again
	w = ts.do(t, http.MethodGet, "/api/shows", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	assert.Equal(t, 4, views[0].AvailableSeats)
}

func TestReserveEndpointValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.sessions.Issue(context.Background(), "alice@x.com")

	w := ts.do(t, http.MethodPost, "/api/bookings", token, map[string]interface{}{
		"showId": "s1", "selectedSeats": []string{"R1C1", "R1C1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/bookings", token, map[string]interface{}{
		"showId": "nope", "selectedSeats": []string{"R1C1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentUnknownBooking(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodPost, "/api/payments", "", map[string]interface{}{
		"bookingId": "nope", "bypass": true,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelEndpointOwnership(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.sessions.Issue(context.Background(), "alice@x.com")
	mallory := ts.sessions.Issue(context.Background(), "mallory@x.com")

	w := ts.do(t, http.MethodPost, "/api/bookings", alice, map[string]interface{}{
		"showId": "s1", "selectedSeats": []string{"R1C1"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	bookingID := decodeBody(t, w)["bookingId"].(string)

	w = ts.do(t, http.MethodPost, "/api/bookings/"+bookingID+"/cancel", mallory, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
