package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/spec-kit/itsm-service/internal/domain"
)

func TestSaveFilterValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	agent := env.staffMember("org-1", domain.StaffRoleAgent)

	filter, err := env.filterSvc.SaveFilter(context.Background(), agent, SavedFilterInput{
		Name:       " My urgent queue ",
		EntityType: domain.FilterEntityTickets,
		Config:     map[string]any{"priority": "URGENT", "status": []string{"NEW", "OPEN"}},
	})
	if err != nil {
		t.Fatalf("SaveFilter: %v", err)
	}
	if filter.Name != "My urgent queue" {
		t.Errorf("Name = %q, want trimmed", filter.Name)
	}
	if filter.StaffID != agent.ID {
		t.Errorf("StaffID = %s, want %s", filter.StaffID, agent.ID)
	}

	// A nil config is stored as an empty blob, not a null.
	empty, err := env.filterSvc.SaveFilter(context.Background(), agent, SavedFilterInput{
		Name:       "everything",
		EntityType: domain.FilterEntitySessions,
	})
	if err != nil {
		t.Fatalf("SaveFilter nil config: %v", err)
	}
	if empty.Config == nil {
		t.Errorf("Config = nil, want empty map")
	}

	_, err = env.filterSvc.SaveFilter(context.Background(), agent, SavedFilterInput{Name: "  ", EntityType: domain.FilterEntityTickets})
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("blank name: code = %s, want VALIDATION_FAILED", code)
	}

	_, err = env.filterSvc.SaveFilter(context.Background(), agent, SavedFilterInput{Name: "x", EntityType: "reports"})
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("bad entity type: code = %s, want VALIDATION_FAILED", code)
	}
}

func TestListFiltersIncludesSharedOnes(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	owner := env.staffMember("org-1", domain.StaffRoleAgent)
	colleague := env.staffMember("org-1", domain.StaffRoleAgent)
	outsider := env.staffMember("org-2", domain.StaffRoleAgent)

	if _, err := env.filterSvc.SaveFilter(context.Background(), owner, SavedFilterInput{
		Name: "private", EntityType: domain.FilterEntityTickets,
	}); err != nil {
		t.Fatalf("seed private filter: %v", err)
	}
	if _, err := env.filterSvc.SaveFilter(context.Background(), owner, SavedFilterInput{
		Name: "team board", EntityType: domain.FilterEntityTasks, Shared: true,
	}); err != nil {
		t.Fatalf("seed shared filter: %v", err)
	}

	own, err := env.filterSvc.ListFilters(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListFilters owner: %v", err)
	}
	if len(own) != 2 {
		t.Errorf("owner sees %d filters, want 2", len(own))
	}

	visible, err := env.filterSvc.ListFilters(context.Background(), colleague)
	if err != nil {
		t.Fatalf("ListFilters colleague: %v", err)
	}
	if len(visible) != 1 || visible[0].Name != "team board" {
		t.Errorf("colleague sees %+v, want only the shared filter", visible)
	}

	foreign, err := env.filterSvc.ListFilters(context.Background(), outsider)
	if err != nil {
		t.Fatalf("ListFilters outsider: %v", err)
	}
	if len(foreign) != 0 {
		t.Errorf("outsider sees %d filters, want 0", len(foreign))
	}
}

func TestDeleteFilterOwnership(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	owner := env.staffMember("org-1", domain.StaffRoleAgent)
	colleague := env.staffMember("org-1", domain.StaffRoleAgent)
	admin := env.staffMember("org-1", domain.StaffRoleAdmin)
	outsiderAdmin := env.staffMember("org-2", domain.StaffRoleAdmin)

	filter, err := env.filterSvc.SaveFilter(context.Background(), owner, SavedFilterInput{
		Name: "stale", EntityType: domain.FilterEntityTickets, Shared: true,
	})
	if err != nil {
		t.Fatalf("seed filter: %v", err)
	}

	if err := env.filterSvc.DeleteFilter(context.Background(), colleague, filter.ID); domainCode(t, err) != "FORBIDDEN" {
		t.Errorf("non-owner delete: want FORBIDDEN, got %v", err)
	}
	if err := env.filterSvc.DeleteFilter(context.Background(), outsiderAdmin, filter.ID); domainCode(t, err) != "FORBIDDEN" {
		t.Errorf("cross-org delete: want FORBIDDEN, got %v", err)
	}
	if err := env.filterSvc.DeleteFilter(context.Background(), admin, filter.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := env.filterSvc.DeleteFilter(context.Background(), owner, filter.ID); domainCode(t, err) != "NOT_FOUND" {
		t.Errorf("double delete: want NOT_FOUND, got %v", err)
	}

	kept, err := env.filterSvc.SaveFilter(context.Background(), owner, SavedFilterInput{
		Name: "mine", EntityType: domain.FilterEntityTickets,
	})
	if err != nil {
		t.Fatalf("seed owner filter: %v", err)
	}
	if err := env.filterSvc.DeleteFilter(context.Background(), owner, kept.ID); err != nil {
		t.Errorf("owner delete: %v", err)
	}

	if err := env.filterSvc.DeleteFilter(context.Background(), admin, uuid.NewString()); domainCode(t, err) != "NOT_FOUND" {
		t.Errorf("unknown filter: want NOT_FOUND, got %v", err)
	}
}
