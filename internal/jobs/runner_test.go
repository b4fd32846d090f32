package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themobileprof/mamacare-be/internal/audit"
	"github.com/themobileprof/mamacare-be/internal/identity"
	"github.com/themobileprof/mamacare-be/internal/outreach"
	"github.com/themobileprof/mamacare-be/pkg/logging"
)

type fakeProfiles struct {
	profiles []*identity.Profile
	err      error
	calls    []string
}

func (f *fakeProfiles) List(_ context.Context, healthType identity.HealthType, activeOnly bool, limit int) ([]*identity.Profile, error) {
	f.calls = append(f.calls, string(healthType))
	if f.err != nil {
		return nil, f.err
	}
	var out []*identity.Profile
	for _, p := range f.profiles {
		if healthType != "" && p.HealthType != healthType {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeSender struct {
	mu       sync.Mutex
	messages []outreach.MessageRequest
	calls    []outreach.CallRequest
	failFor  map[string]bool
}

func (f *fakeSender) SendMessage(_ context.Context, req outreach.MessageRequest) (audit.MessageLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[req.PatientID] {
		return audit.MessageLog{}, &outreach.Error{Kind: outreach.Internal, Message: "carrier rejected"}
	}
	f.messages = append(f.messages, req)
	return audit.MessageLog{MessageSID: "SM-" + req.PatientID}, nil
}

func (f *fakeSender) PlaceCall(_ context.Context, req outreach.CallRequest) (audit.CallLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[req.PatientID] {
		return audit.CallLog{}, &outreach.Error{Kind: outreach.PermissionDenied, Message: "Number not verified"}
	}
	f.calls = append(f.calls, req)
	return audit.CallLog{CallSID: "CA-" + req.PatientID}, nil
}

var ist = time.FixedZone("IST", 5*60*60+30*60)

func newTestRunner(users, patients *fakeProfiles, sender *fakeSender, now time.Time) *Runner {
	r := NewRunner(Config{
		Users:       users,
		Patients:    patients,
		Sender:      sender,
		Concurrency: 2,
		Location:    ist,
		Logger:      logging.Discard(),
	})
	r.now = func() time.Time { return now }
	return r
}

func datePtr(t time.Time) *time.Time { return &t }

func TestTipFor(t *testing.T) {
	want := []TipType{TipIron, TipWater, TipFood, TipExercise, TipCheckup, TipIron, TipWater}
	for day, tip := range want {
		if got := TipFor(day); got != tip {
			t.Errorf("TipFor(%d) = %s, want %s", day, got, tip)
		}
	}
}

func TestCheckupReminders(t *testing.T) {
	// 2026-03-10 20:00 UTC is already 2026-03-11 in IST
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	users := &fakeProfiles{profiles: []*identity.Profile{
		{ID: "due", Name: "Asha", Phone: "9876543210", HealthType: identity.HealthMaternity, IsActive: true, Language: "hindi", NextCheckup: datePtr(time.Date(2026, 3, 11, 4, 0, 0, 0, ist))},
		{ID: "later", Name: "Rani", Phone: "9876543211", HealthType: identity.HealthMaternity, IsActive: true, NextCheckup: datePtr(time.Date(2026, 3, 12, 4, 0, 0, 0, ist))},
		{ID: "none", Name: "Meena", Phone: "9876543212", HealthType: identity.HealthMaternity, IsActive: true},
		{ID: "inactive", Name: "Kiran", Phone: "9876543213", HealthType: identity.HealthMaternity, NextCheckup: datePtr(time.Date(2026, 3, 11, 4, 0, 0, 0, ist))},
	}}
	sender := &fakeSender{}
	r := newTestRunner(users, &fakeProfiles{}, sender, now)

	summary, err := r.CheckupReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Job: JobCheckupReminder, Total: 3, Sent: 1, Skipped: 2}, summary)
	require.Len(t, sender.messages, 1)
	assert.Equal(t, "due", sender.messages[0].PatientID)
	assert.Equal(t, audit.TypeCheckupReminder, sender.messages[0].Type)
	assert.Equal(t, "🏥 *MamaCare Reminder*\n\nHi Asha! You have a checkup scheduled today.\n\n✅ Apni vitals log karna na bhulen. Apna dhyan rakhiye! 💕", sender.messages[0].Body)
}

func TestDailyTips(t *testing.T) {
	// Wednesday in IST: weekday 3 → exercise
	now := time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC)
	lmp := now.AddDate(0, 0, -70)
	patients := &fakeProfiles{profiles: []*identity.Profile{
		{ID: "p1", Name: "Asha", Phone: "9876543210", LMP: &lmp},
		{ID: "p2", Name: "Rani", Phone: "9876543211", Language: "english"},
		{ID: "p3", Name: "Nophone"},
		{ID: "p4", Name: "Fails", Phone: "9876543213"},
	}}
	sender := &fakeSender{failFor: map[string]bool{"p4": true}}
	r := newTestRunner(&fakeProfiles{}, patients, sender, now)

	summary, err := r.DailyTips(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Job: JobDailyTips, Total: 4, Sent: 2, Failed: 1, Skipped: 1}, summary)

	bodies := map[string]string{}
	for _, m := range sender.messages {
		bodies[m.PatientID] = m.Body
		assert.Equal(t, audit.TypeAutomatedDaily, m.Type)
	}
	assert.Equal(t, "☀️ Namaste Asha!\n\n🚶 Aaj thoda chalein!\n✅ 20-30 minute walking\n\nActive rahiye! 💚", bodies["p1"])
	assert.Equal(t, "☀️ Hello Rani!\n\n🚶 Walk today!\n✅ 20-30 minutes\n\nStay active! 💚", bodies["p2"])
}

func TestTipMessage_CheckupIncludesWeek(t *testing.T) {
	got := tipMessage(TipCheckup, tipLanguage("english"), "Asha", 20)
	assert.Equal(t, "☀️ Good morning Asha!\n\n🏥 Hospital checkup reminder!\nWeek 20 now! 💚", got)
}

func TestDailyCalls_WeekWindow(t *testing.T) {
	now := time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC)
	early := now.AddDate(0, 0, -7*8)
	late := now.AddDate(0, 0, -7*41)
	week30 := now.AddDate(0, 0, -7*30)
	patients := &fakeProfiles{profiles: []*identity.Profile{
		{ID: "default", Name: "Asha", Phone: "9876543210"},
		{ID: "early", Name: "Rani", Phone: "9876543211", LMP: &early},
		{ID: "late", Name: "Meena", Phone: "9876543212", LMP: &late},
		{ID: "week30", Name: "Kiran", Phone: "9876543213", LMP: &week30, Language: "english"},
		{ID: "stored", Name: "Devi", Phone: "9876543214", PregnancyWeek: 8},
	}}
	sender := &fakeSender{}
	r := newTestRunner(&fakeProfiles{}, patients, sender, now)

	summary, err := r.DailyCalls(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 2, summary.Skipped)

	weeks := map[string]int{}
	for _, c := range sender.calls {
		weeks[c.PatientID] = c.Week
		assert.Equal(t, audit.TypeAutomatedDaily, c.Type)
	}
	assert.Equal(t, map[string]int{"default": DefaultWeek, "week30": 30, "stored": DefaultWeek}, weeks)
}

func TestWeeklyCalls(t *testing.T) {
	users := &fakeProfiles{profiles: []*identity.Profile{
		{ID: "u1", Name: "Asha", Phone: "9876543210", IsActive: true, PregnancyWeek: 18},
		{ID: "u2", Name: "Rani", Phone: "9876543211", IsActive: true},
		{ID: "u3", Name: "Meena", Phone: "9876543212"},
	}}
	sender := &fakeSender{failFor: map[string]bool{"u2": true}}
	r := newTestRunner(users, &fakeProfiles{}, sender, time.Now())

	summary, err := r.WeeklyCalls(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Job: JobWeeklyCalls, Total: 2, Sent: 1, Failed: 1}, summary)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, 18, sender.calls[0].Week)
	assert.Equal(t, audit.TypeScheduledWeekly, sender.calls[0].Type)
}

func TestWeeklyCallDay(t *testing.T) {
	monday := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	for i, want := range []bool{true, false, true, false, true, false, false} {
		if got := WeeklyCallDay(monday.AddDate(0, 0, i)); got != want {
			t.Errorf("day %d: got %v, want %v", i, got, want)
		}
	}
}

func TestJobs_ListErrorReturned(t *testing.T) {
	broken := &fakeProfiles{err: errors.New("db down")}
	r := newTestRunner(broken, broken, &fakeSender{}, time.Now())

	_, err := r.DailyTips(context.Background())
	assert.Error(t, err)
	_, err = r.CheckupReminders(context.Background())
	assert.Error(t, err)
}

func TestTriggerDailyWhatsApp(t *testing.T) {
	patients := &fakeProfiles{profiles: []*identity.Profile{
		{ID: "p1", Name: "Asha", Phone: "9876543210"},
		{ID: "p2", Name: "Rani", Phone: "9876543211"},
	}}
	sender := &fakeSender{}
	r := newTestRunner(&fakeProfiles{}, patients, sender, time.Now())

	result, err := r.TriggerDailyWhatsApp(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Messages, 1, "limit defaults to 1")
	assert.Equal(t, TriggerItem{Patient: "Asha", MessageSID: "SM-p1"}, result.Messages[0])
	assert.Equal(t, "☀️ TEST: Good morning Asha!\n\n💊 Iron tablet reminder.\n\nTake care! 💚", sender.messages[0].Body)
	assert.Equal(t, audit.TypeManualTrigger, sender.messages[0].Type)
}

func TestTriggerDailyCalls(t *testing.T) {
	patients := &fakeProfiles{profiles: []*identity.Profile{
		{ID: "p1", Name: "Asha", Phone: "9876543210"},
		{ID: "p2", Name: "Rani", Phone: "9876543211"},
	}}
	r := newTestRunner(&fakeProfiles{}, patients, &fakeSender{failFor: map[string]bool{"p2": true}}, time.Now())

	_, err := r.TriggerDailyCalls(context.Background(), 2)
	require.Error(t, err)
	oerr := outreach.AsError(err)
	assert.Equal(t, outreach.Internal, oerr.Kind)
	assert.Equal(t, "Number not verified", oerr.Message)
}

func TestTrigger_NoPatients(t *testing.T) {
	r := newTestRunner(&fakeProfiles{}, &fakeProfiles{}, &fakeSender{}, time.Now())

	result, err := r.TriggerDailyCalls(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "No patients found", result.Message)
}
