package outreach

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/pkg/logging"
	"github.com/themobileprof/mamacare-be/pkg/twilio"
)

type fakeCarrier struct {
	mu           sync.Mutex
	unconfigured bool
	sendErr      error
	callErr      error
	messages     []string
	calls        []twilio.CallRequest
}

func (f *fakeCarrier) Configured() bool { return !f.unconfigured }

func (f *fakeCarrier) SendWhatsApp(_ context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, to+"|"+body)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "SM123", nil
}

func (f *fakeCarrier) CreateCall(_ context.Context, req twilio.CallRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.callErr != nil {
		return "", f.callErr
	}
	return "CA123", nil
}

func newTestService(c *fakeCarrier) (*Service, *audit.MemoryStore) {
	store := audit.NewMemoryStore()
	return NewService(c, audit.NewLogger(store), "https://mamacare.example/", logging.Discard()), store
}

func TestPlaceCall(t *testing.T) {
	carrier := &fakeCarrier{}
	svc, store := newTestService(carrier)

	rec, err := svc.PlaceCall(context.Background(), CallRequest{
		PatientID:   "p1",
		PatientName: "Asha Devi",
		Phone:       "98765 43210",
		Week:        24,
		Language:    "english",
	})
	require.NoError(t, err)

	assert.Equal(t, "CA123", rec.CallSID)
	assert.Equal(t, audit.TypeUserRequested, rec.Type)
	assert.Equal(t, audit.StatusInitiated, rec.Status)
	assert.Equal(t, "+919876543210", rec.Phone)

	require.Len(t, carrier.calls, 1)
	call := carrier.calls[0]
	assert.Equal(t, "+919876543210", call.To)
	assert.True(t, call.Record)
	assert.Equal(t, 60, call.Timeout)
	assert.Equal(t, "completed", call.StatusCallbackEvent)
	assert.Equal(t, "https://mamacare.example/webhooks/call-status?patientId=p1", call.StatusCallback)

	answer, err := url.Parse(call.AnswerURL)
	require.NoError(t, err)
	assert.Equal(t, "/webhooks/ivr", answer.Path)
	assert.Equal(t, "24", answer.Query().Get("week"))
	assert.Equal(t, "english", answer.Query().Get("lang"))
	assert.Equal(t, "Asha Devi", answer.Query().Get("name"))

	require.Len(t, store.Calls, 1)
	assert.Equal(t, "p1", store.Calls[0].PatientID)
}

func TestPlaceCall_Defaults(t *testing.T) {
	carrier := &fakeCarrier{}
	svc, store := newTestService(carrier)

	_, err := svc.PlaceCall(context.Background(), CallRequest{Phone: "+919876543210", Type: audit.TypeManualTrigger})
	require.NoError(t, err)

	answer, _ := url.Parse(carrier.calls[0].AnswerURL)
	assert.Equal(t, "0", answer.Query().Get("week"))
	assert.Equal(t, "hindi", answer.Query().Get("lang"))
	assert.Equal(t, "Patient", answer.Query().Get("name"))
	assert.True(t, strings.HasSuffix(carrier.calls[0].StatusCallback, "patientId=unknown"))

	require.Len(t, store.Calls, 1)
	assert.Equal(t, "Unknown", store.Calls[0].PatientName)
	assert.Equal(t, audit.TypeManualTrigger, store.Calls[0].Type)
}

func TestPlaceCall_Errors(t *testing.T) {
	tests := []struct {
		name       string
		carrier    *fakeCarrier
		phone      string
		wantKind   Kind
		wantStatus int
		wantMsg    string
	}{
		{"missing phone", &fakeCarrier{}, "", InvalidArgument, http.StatusBadRequest, "Phone number is required"},
		{"not configured", &fakeCarrier{unconfigured: true}, "9876543210", FailedPrecondition, http.StatusPreconditionFailed, "Twilio not configured"},
		{"no digits", &fakeCarrier{}, "call me", InvalidArgument, http.StatusBadRequest, "Invalid phone number format"},
		{"unverified", &fakeCarrier{callErr: &twilio.APIError{Status: 400, Code: 21216}}, "9876543210", PermissionDenied, http.StatusForbidden, "Number not verified"},
		{"bad auth", &fakeCarrier{callErr: &twilio.APIError{Status: 401, Code: 20003}}, "9876543210", Unauthenticated, http.StatusUnauthorized, "Twilio auth failed"},
		{"bad to", &fakeCarrier{callErr: &twilio.APIError{Status: 400, Code: 21606}}, "9876543210", InvalidArgument, http.StatusBadRequest, "Invalid 'To' number"},
		{"other", &fakeCarrier{callErr: errors.New("connection reset")}, "9876543210", Internal, http.StatusInternalServerError, "connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(tt.carrier)

			_, err := svc.PlaceCall(context.Background(), CallRequest{Phone: tt.phone})
			require.Error(t, err)

			var oerr *Error
			require.ErrorAs(t, err, &oerr)
			assert.Equal(t, tt.wantKind, oerr.Kind)
			assert.Equal(t, tt.wantStatus, oerr.HTTPStatus())
			assert.Contains(t, oerr.Message, tt.wantMsg)
			assert.Empty(t, store.Calls)
		})
	}
}

func TestPlaceCall_RecordFailureKeepsSID(t *testing.T) {
	carrier := &fakeCarrier{}
	svc, store := newTestService(carrier)
	store.FailWrite = errors.New("db down")

	rec, err := svc.PlaceCall(context.Background(), CallRequest{Phone: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, "CA123", rec.CallSID)
}

func TestSendMessage(t *testing.T) {
	carrier := &fakeCarrier{}
	svc, store := newTestService(carrier)

	rec, err := svc.SendMessage(context.Background(), MessageRequest{
		PatientID:   "p1",
		PatientName: "Asha",
		Phone:       "9876543210",
		Body:        "Take your iron tablet",
		Type:        audit.TypeAutomatedDaily,
	})
	require.NoError(t, err)

	assert.Equal(t, "SM123", rec.MessageSID)
	assert.Equal(t, audit.DirectionOutbound, rec.Direction)
	assert.Equal(t, audit.StatusSent, rec.Status)
	assert.Equal(t, []string{"+919876543210|Take your iron tablet"}, carrier.messages)
	require.Len(t, store.Messages, 1)
}

func TestSendMessage_FailureNotRecorded(t *testing.T) {
	carrier := &fakeCarrier{sendErr: twilio.ErrNotConfigured}
	svc, store := newTestService(carrier)

	_, err := svc.SendMessage(context.Background(), MessageRequest{Phone: "9876543210", Body: "hi"})
	require.Error(t, err)
	assert.Equal(t, FailedPrecondition, AsError(err).Kind)
	assert.Empty(t, store.Messages)
}

func TestAsError_WrapsUnknown(t *testing.T) {
	err := AsError(errors.New("boom"))
	assert.Equal(t, Internal, err.Kind)
	assert.Equal(t, "boom", err.Message)
}
