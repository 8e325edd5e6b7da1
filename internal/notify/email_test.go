package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func TestNewSendGridSenderNilWithoutKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{}, nil))
}

func TestSendGridSenderPostsMail(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.test", FromEmail: "noreply@vitalpoint.test"}, quietLogger())
	sender.baseURL = srv.URL + "/v3/mail/send"

	err := sender.Send(context.Background(), EmailMessage{
		To:      "alice@example.com",
		ToName:  "Alice",
		Subject: "hi",
		Body:    "plain",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", payload["subject"])
	from, _ := payload["from"].(map[string]any)
	assert.Equal(t, "noreply@vitalpoint.test", from["email"])
	assert.Equal(t, "VitalPoint", from["name"])
}

func TestSendGridSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.test", FromEmail: "noreply@vitalpoint.test"}, quietLogger())
	sender.baseURL = srv.URL + "/v3/mail/send"

	err := sender.Send(context.Background(), EmailMessage{To: "alice@example.com", Subject: "hi", Body: "plain"})
	assert.Error(t, err)
}

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func confirmation() Confirmation {
	return Confirmation{
		AppointmentID: 1,
		PatientName:   "Alice Tan",
		PatientEmail:  "alice@example.com",
		DoctorName:    "Dr. Jane Doe",
		Specialty:     "Cardiologist",
		Day:           "Monday",
		Slot:          "9:00 AM",
		Location:      "Heart Care Center",
	}
}

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage("VitalPoint", confirmation())

	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "VitalPoint appointment #1 confirmed", msg.Subject)
	assert.Contains(t, msg.Body, "Doctor: Dr. Jane Doe (Cardiologist)")
	assert.Contains(t, msg.Body, "Time: 9:00 AM")
	assert.Contains(t, msg.HTML, "<strong>#1</strong>")
}

func TestConfirmationMessageEscapesHTML(t *testing.T) {
	c := confirmation()
	c.PatientName = "<script>x</script>"

	msg := ConfirmationMessage("VitalPoint", c)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestServiceNotifyBookingConfirmed(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "", quietLogger())

	require.NoError(t, svc.NotifyBookingConfirmed(context.Background(), confirmation()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "alice@example.com", sender.sent[0].To)
}

func TestServiceNotifyBookingConfirmedErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("sendgrid down")}
	svc := NewService(sender, "VitalPoint", quietLogger())

	err := svc.NotifyBookingConfirmed(context.Background(), confirmation())
	assert.Error(t, err)

	c := confirmation()
	c.PatientEmail = ""
	assert.Error(t, svc.NotifyBookingConfirmed(context.Background(), c))
}

func TestServiceWithoutSenderIsNoop(t *testing.T) {
	var nilSvc *Service
	assert.NoError(t, nilSvc.NotifyBookingConfirmed(context.Background(), confirmation()))
	assert.NoError(t, NewService(nil, "", quietLogger()).NotifyBookingConfirmed(context.Background(), confirmation()))
}

func TestStubEmailSender(t *testing.T) {
	assert.NoError(t, NewStubEmailSender(quietLogger()).Send(context.Background(), EmailMessage{To: "a@b.c"}))
}
