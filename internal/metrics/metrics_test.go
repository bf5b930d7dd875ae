package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/medication-reminder/internal/notify"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.TickObserved(3 * time.Millisecond)
	r.TickObserved(time.Millisecond)
	r.NotificationSent(notify.KindMedicineReminder)
	r.NotificationSent(notify.KindMedicineReminder)
	r.NotificationSent(notify.KindLowInventory)
	r.LowInventory(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.ticks))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.notifications.WithLabelValues("medicine_reminder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.notifications.WithLabelValues("low_inventory")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.lowInventory))
}

func TestHandler(t *testing.T) {
	r := New()
	r.NotificationSent(notify.KindAppointmentAlert)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `medrem_notifications_total{kind="appointment_alert"} 1`)
}
