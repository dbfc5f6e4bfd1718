package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRecoveryFlowSetsFirstPassword(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()

	payments := NewPaymentService(db)
	auth := NewAuthService(db, "http://localhost:3000")

	email := uniqueEmail()
	res, err := payments.Apply(ctx, PaymentParams{
		Email: email, SessionID: uniqueSession(), Amount: 7900, Currency: "usd", Credits: 1,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Provisioned account has no password yet.
	if _, err := auth.Authenticate(ctx, email, "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Authenticate before reset: err = %v, want ErrInvalidCredentials", err)
	}

	link, err := auth.GenerateRecoveryLink(ctx, res.UserID)
	if err != nil {
		t.Fatalf("GenerateRecoveryLink: %v", err)
	}
	token := link[strings.LastIndex(link, "=")+1:]

	if err := auth.ResetPassword(ctx, token, "s3cure-pass"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	user, err := auth.Authenticate(ctx, email, "s3cure-pass")
	if err != nil {
		t.Fatalf("Authenticate after reset: %v", err)
	}
	if user.ID != res.UserID {
		t.Errorf("authenticated user %s, want %s", user.ID, res.UserID)
	}

	// Token is single use.
	if err := auth.ResetPassword(ctx, token, "another-pass"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("reused token: err = %v, want ErrResetTokenInvalid", err)
	}
}

func TestProjectSubmitDebitsOneCredit(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()

	payments := NewPaymentService(db)
	projects := NewProjectService(db)

	email := uniqueEmail()
	res, err := payments.Apply(ctx, PaymentParams{
		Email: email, SessionID: uniqueSession(), Amount: 7900, Currency: "usd", Credits: 1,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	project, err := projects.Submit(ctx, res.UserID, ProjectParams{
		Title: "Launch teaser", Brief: "30s product teaser for the spring launch",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if project.Status != "submitted" {
		t.Errorf("status = %q, want submitted", project.Status)
	}
	if got := balanceOf(t, db, res.UserID); got != 0 {
		t.Errorf("balance = %d after submission, want 0", got)
	}

	// No credits left: the next briefing is rejected and nothing is stored.
	if _, err := projects.Submit(ctx, res.UserID, ProjectParams{Title: "Second", Brief: "another"}); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("Submit without credits: err = %v, want ErrInsufficientCredits", err)
	}

	list, err := projects.ListByUser(ctx, res.UserID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("projects = %d, want 1", len(list))
	}
}
