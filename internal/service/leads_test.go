package service

import (
	"context"
	"testing"

	"github.com/nextmove-ai/nextmove/internal/domain"
	"go.uber.org/zap"
)

func newTestLeadService() (*LeadService, *mockLeadStore) {
	leads := newMockLeadStore()
	svc := NewLeadService(leads, newMockInteractionStore(), newMockEventStore(), zap.NewNop())
	return svc, leads
}

func TestLeadService_Create(t *testing.T) {
	svc, leads := newTestLeadService()

	lead, err := svc.Create(context.Background(), CreateLeadInput{
		FirstName: "  Dana ",
		Phone:     "+15550100",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if lead.FirstName != "Dana" {
		t.Fatalf("name not trimmed: %q", lead.FirstName)
	}
	if lead.Stage != domain.StageNew {
		t.Fatalf("expected default stage new, got %s", lead.Stage)
	}
	if _, err := leads.GetByID(context.Background(), lead.ID); err != nil {
		t.Fatal("lead not persisted")
	}
}

func TestLeadService_Create_Validation(t *testing.T) {
	svc, _ := newTestLeadService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateLeadInput{Phone: "+15550100"}); err != ErrLeadNameRequired {
		t.Fatalf("expected ErrLeadNameRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateLeadInput{FirstName: "Dana"}); err != ErrNoContactInfo {
		t.Fatalf("expected ErrNoContactInfo, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateLeadInput{FirstName: "Dana", Phone: "x", Stage: "bogus"}); err != ErrInvalidStage {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}
}
