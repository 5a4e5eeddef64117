package trips

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/voyager/internal/app/models"
)

func newTestRouter(t *testing.T, fx serviceFixture) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewTripsHandlers(fx.service, zap.NewNop())
	r := gin.New()
	r.GET("/api/v1/trips", h.HandleList)
	r.POST("/api/v1/trips", h.HandleGenerate)
	r.GET("/api/v1/trips/:id", h.HandleGet)
	r.DELETE("/api/v1/trips/:id", h.HandleDelete)
	r.POST("/api/v1/trips/:id/edits", h.HandleEdit)
	r.POST("/api/v1/trips/:id/days/:day/activities", h.HandleInsertActivity)
	r.GET("/api/v1/trips/:id/days/:day/activities/:idx/booking-link", h.HandleBookingLink)
	r.POST("/api/v1/requests/:id/confirm", h.HandleConfirm)
	r.POST("/api/v1/requests/:id/cancel", h.HandleCancel)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const generateBody = `{
	"departureLocation": "Paris",
	"destinations": ["Rome"],
	"startDate": "2025-06-01",
	"endDate": "2025-06-02",
	"transportType": "Plane"
}`

func TestHandleGenerate(t *testing.T) {
	t.Run("free generation returns the trip with camelCase fields", func(t *testing.T) {
		fx := newFixture(t, false)
		r := newTestRouter(t, fx)

		w := doJSON(r, http.MethodPost, "/api/v1/trips", generateBody)
		require.Equal(t, http.StatusCreated, w.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.Equal(t, "Paris", payload["departureLocation"])
		assert.NotEmpty(t, payload["imageUrl"])
		assert.EqualValues(t, 0, payload["editCount"])
	})

	t.Run("gated generation returns 402 with payment details", func(t *testing.T) {
		fx := newFixture(t, true)
		r := newTestRouter(t, fx)

		w := doJSON(r, http.MethodPost, "/api/v1/trips", generateBody)
		require.Equal(t, http.StatusPaymentRequired, w.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.Equal(t, "AWAITING_PAYMENT", payload["status"])
		assert.EqualValues(t, 299, payload["amount_cents"])
		assert.NotEmpty(t, payload["request_id"])
	})

	t.Run("invalid request body", func(t *testing.T) {
		fx := newFixture(t, false)
		r := newTestRouter(t, fx)

		w := doJSON(r, http.MethodPost, "/api/v1/trips", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing departure maps to 422", func(t *testing.T) {
		fx := newFixture(t, false)
		r := newTestRouter(t, fx)

		w := doJSON(r, http.MethodPost, "/api/v1/trips", `{"destinations":["Rome"],"startDate":"2025-06-01","endDate":"2025-06-02"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandleConfirm(t *testing.T) {
	fx := newFixture(t, true)
	r := newTestRouter(t, fx)

	w := doJSON(r, http.MethodPost, "/api/v1/trips", generateBody)
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var pending struct {
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))

	w = doJSON(r, http.MethodPost, "/api/v1/requests/"+pending.RequestID+"/confirm", "")
	require.Equal(t, http.StatusOK, w.Code)

	// second confirm of the same request is a conflict
	w = doJSON(r, http.MethodPost, "/api/v1/requests/"+pending.RequestID+"/confirm", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleCancel(t *testing.T) {
	fx := newFixture(t, true)
	r := newTestRouter(t, fx)

	w := doJSON(r, http.MethodPost, "/api/v1/trips", generateBody)
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var pending struct {
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))

	w = doJSON(r, http.MethodPost, "/api/v1/requests/"+pending.RequestID+"/cancel", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/requests/"+pending.RequestID+"/confirm", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleEdit(t *testing.T) {
	existing := plannedTrip("Rome getaway")
	existing.ID = uuid.New()

	t.Run("blank instruction maps to 422", func(t *testing.T) {
		fx := newFixture(t, true, existing)
		r := newTestRouter(t, fx)

		w := doJSON(r, http.MethodPost, "/api/v1/trips/"+existing.ID.String()+"/edits", `{"instruction":"  "}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("free edit returns the updated trip", func(t *testing.T) {
		fx := newFixture(t, true, existing)
		r := newTestRouter(t, fx)

		w := doJSON(r, http.MethodPost, "/api/v1/trips/"+existing.ID.String()+"/edits", `{"instruction":"add a museum"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.EqualValues(t, 1, payload["editCount"])
	})

	t.Run("unknown trip maps to 404", func(t *testing.T) {
		fx := newFixture(t, true)
		r := newTestRouter(t, fx)

		w := doJSON(r, http.MethodPost, "/api/v1/trips/"+uuid.NewString()+"/edits", `{"instruction":"anything"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleBookingLink(t *testing.T) {
	existing := plannedTrip("Rome getaway")
	existing.ID = uuid.New()
	fx := newFixture(t, true, existing)
	r := newTestRouter(t, fx)

	t.Run("resolves a fallback link", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/v1/trips/"+existing.ID.String()+"/days/2/activities/0/booking-link", "")
		require.Equal(t, http.StatusOK, w.Code)

		var payload struct {
			BookingURL string `json:"bookingUrl"`
			Available  bool   `json:"available"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.True(t, payload.Available)
		assert.Contains(t, payload.BookingURL, "thetrainline.com")
	})

	t.Run("out of range maps to 422", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/v1/trips/"+existing.ID.String()+"/days/9/activities/0/booking-link", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("bad day index", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/v1/trips/"+existing.ID.String()+"/days/two/activities/0/booking-link", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleInsertActivity(t *testing.T) {
	existing := plannedTrip("Rome getaway")
	existing.ID = uuid.New()
	fx := newFixture(t, true, existing)
	r := newTestRouter(t, fx)

	w := doJSON(r, http.MethodPost, "/api/v1/trips/"+existing.ID.String()+"/days/1/activities",
		`{"time":"12:00","title":"Lunch","type":"RESTAURANT"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var trip models.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trip))
	require.Len(t, trip.Itinerary[0].Activities, 2)
	assert.Equal(t, "Lunch", trip.Itinerary[0].Activities[1].Title)
}

func TestHandleListAndDelete(t *testing.T) {
	existing := plannedTrip("Rome getaway")
	existing.ID = uuid.New()
	fx := newFixture(t, true, existing)
	r := newTestRouter(t, fx)

	w := doJSON(r, http.MethodGet, "/api/v1/trips", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), existing.ID.String())

	w = doJSON(r, http.MethodDelete, "/api/v1/trips/"+existing.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/trips/"+existing.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
