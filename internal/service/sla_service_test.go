package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
)

// 2026-03-02 is a Monday; the default calendar works 09:00-17:00 UTC Mon-Fri.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestDueDateUsesDefaultTargetsWithoutPolicy(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	anchor := monday.Add(10 * time.Hour)
	due, err := env.slaSvc.DueDateFor(context.Background(), "org-1", domain.TicketPriorityUrgent, anchor)
	if err != nil {
		t.Fatalf("DueDateFor: %v", err)
	}
	// Urgent defaults to 240 working minutes: 10:00 + 4h inside one window.
	if want := monday.Add(14 * time.Hour); !due.Equal(want) {
		t.Errorf("due = %v, want %v", due, want)
	}
}

func TestDueDateUsesStoredPolicy(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	admin := env.staffMember("org-1", domain.StaffRoleAdmin)

	_, err := env.slaSvc.UpsertPolicy(context.Background(), admin, &domain.SLAPolicy{
		OrganizationID:          "org-1",
		Priority:                domain.TicketPriorityUrgent,
		ResponseTargetMinutes:   15,
		ResolutionTargetMinutes: 60,
	})
	if err != nil {
		t.Fatalf("UpsertPolicy: %v", err)
	}

	anchor := monday.Add(10 * time.Hour)
	due, err := env.slaSvc.DueDateFor(context.Background(), "org-1", domain.TicketPriorityUrgent, anchor)
	if err != nil {
		t.Fatalf("DueDateFor: %v", err)
	}
	if want := monday.Add(11 * time.Hour); !due.Equal(want) {
		t.Errorf("due = %v, want %v", due, want)
	}
}

func TestDueDateSkipsWeekend(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	saturday := monday.Add(-48 * time.Hour).Add(12 * time.Hour)
	due, err := env.slaSvc.DueDateFor(context.Background(), "org-1", domain.TicketPriorityUrgent, saturday)
	if err != nil {
		t.Fatalf("DueDateFor: %v", err)
	}
	// Nothing accrues over the weekend; the clock starts Monday 09:00.
	if want := monday.Add(13 * time.Hour); !due.Equal(want) {
		t.Errorf("due = %v, want %v", due, want)
	}
}

func TestDueDateSkipsHolidays(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	hours := &domain.BusinessHours{
		OrganizationID: "org-1",
		Timezone:       "UTC",
		Holidays:       []string{"2026-03-02"},
	}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		hours.Windows = append(hours.Windows, domain.DayWindow{
			Weekday: wd, StartTime: "09:00", EndTime: "17:00",
		})
	}
	if err := env.calendars.Upsert(context.Background(), hours); err != nil {
		t.Fatalf("seed business hours: %v", err)
	}

	due, err := env.slaSvc.DueDateFor(context.Background(), "org-1", domain.TicketPriorityUrgent, monday.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("DueDateFor: %v", err)
	}
	// Monday is a holiday, so the budget runs from Tuesday 09:00.
	if want := monday.Add(24 * time.Hour).Add(13 * time.Hour); !due.Equal(want) {
		t.Errorf("due = %v, want %v", due, want)
	}
}

func TestSweepFlagsOverdueTicketsOnce(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	now := time.Now().UTC()

	overdue := seedTicket(t, env, "org-1", domain.TicketStatusOpen)
	past := now.Add(-time.Hour)
	overdue.DueAt = &past
	if err := env.tickets.Update(context.Background(), overdue); err != nil {
		t.Fatalf("seed due: %v", err)
	}
	seedTicket(t, env, "org-1", domain.TicketStatusOpen) // due in the future

	flagged, err := env.slaSvc.SweepBreaches(context.Background(), now, 100)
	if err != nil {
		t.Fatalf("SweepBreaches: %v", err)
	}
	if flagged != 1 {
		t.Fatalf("flagged = %d, want 1", flagged)
	}
	got, err := env.tickets.GetByID(context.Background(), overdue.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.SLABreached {
		t.Error("overdue ticket not flagged")
	}
	if entries := env.history.byType(domain.ChangeTypeSLABreach); len(entries) != 1 {
		t.Errorf("breach history entries = %d, want 1", len(entries))
	}
	if got := env.dispatcher.byType(events.EventSLABreached); len(got) != 1 {
		t.Errorf("sla_breached events = %d, want 1", len(got))
	}

	// The flag is sticky: a second pass finds nothing new.
	flagged, err = env.slaSvc.SweepBreaches(context.Background(), now.Add(time.Hour), 100)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if flagged != 0 {
		t.Errorf("second sweep flagged = %d, want 0", flagged)
	}
}

func TestResetBreachClearsFlagAndReanchors(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	admin := env.staffMember("org-1", domain.StaffRoleAdmin)
	agent := env.staffMember("org-1", domain.StaffRoleAgent)

	ticket := seedTicket(t, env, "org-1", domain.TicketStatusOpen)
	past := time.Now().UTC().Add(-time.Hour)
	ticket.DueAt = &past
	ticket.SLABreached = true
	if err := env.tickets.Update(context.Background(), ticket); err != nil {
		t.Fatalf("seed breach: %v", err)
	}

	if _, err := env.slaSvc.ResetBreach(context.Background(), agent, ticket.ID, "oops"); err == nil {
		t.Fatal("non-admin reset should be rejected")
	} else if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Errorf("code = %s, want FORBIDDEN", code)
	}

	before := time.Now().UTC()
	reset, err := env.slaSvc.ResetBreach(context.Background(), admin, ticket.ID, "holiday misconfigured")
	if err != nil {
		t.Fatalf("ResetBreach: %v", err)
	}
	if reset.SLABreached {
		t.Error("flag not cleared")
	}
	if reset.SLAAnchorAt == nil || reset.SLAAnchorAt.Before(before) {
		t.Error("reset must re-anchor at the reset instant")
	}
	if reset.DueAt == nil || !reset.DueAt.After(before) {
		t.Error("reset must recompute a future due date")
	}
	if entries := env.history.byType(domain.ChangeTypeSLAReset); len(entries) != 1 {
		t.Errorf("reset history entries = %d, want 1", len(entries))
	}
	if got := env.dispatcher.byType(events.EventSLAReset); len(got) != 1 {
		t.Errorf("sla_reset events = %d, want 1", len(got))
	}

	closed := seedTicket(t, env, "org-1", domain.TicketStatusClosed)
	if _, err := env.slaSvc.ResetBreach(context.Background(), admin, closed.ID, ""); err == nil {
		t.Fatal("terminal ticket reset should be rejected")
	} else if code := domainCode(t, err); code != "CONFLICT" {
		t.Errorf("code = %s, want CONFLICT", code)
	}
}

func TestUpsertPolicyValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	admin := env.staffMember("org-1", domain.StaffRoleAdmin)

	_, err := env.slaSvc.UpsertPolicy(context.Background(), admin, &domain.SLAPolicy{
		OrganizationID: "org-1",
		Priority:       domain.TicketPriorityLow,
	})
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", code)
	}

	_, err = env.slaSvc.UpsertPolicy(context.Background(), admin, &domain.SLAPolicy{
		OrganizationID:          "org-1",
		Priority:                domain.TicketPriorityLow,
		ResponseTargetMinutes:   480,
		ResolutionTargetMinutes: 2880,
	})
	if err != nil {
		t.Fatalf("UpsertPolicy: %v", err)
	}
	policies, err := env.slaSvc.ListPolicies(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("ListPolicies: %v", err)
	}
	if len(policies) != 1 {
		t.Errorf("policies = %d, want 1", len(policies))
	}
}
