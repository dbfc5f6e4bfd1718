package service

import (
	"context"
	"errors"
	"testing"
)

type fakeApplier struct {
	calls []PaymentParams
	res   *PaymentResult
	err   error
}

func (f *fakeApplier) Apply(_ context.Context, p PaymentParams) (*PaymentResult, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakeRecovery struct {
	calls int
	link  string
	err   error
}

func (f *fakeRecovery) GenerateRecoveryLink(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.link, f.err
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendRecoveryLink(_ context.Context, email, _ string) error {
	f.sent = append(f.sent, email)
	return f.err
}

func TestProcessEventExistingUser(t *testing.T) {
	applier := &fakeApplier{res: &PaymentResult{UserID: "u1"}}
	recovery := &fakeRecovery{link: "https://portal/auth/reset?token=x"}
	mail := &fakeMailer{}
	svc := NewReconcileService(applier, recovery, mail)

	err := svc.ProcessEvent(context.Background(), CheckoutEvent{
		SessionID: "cs_1",
		Email:     "buyer@example.com",
		Amount:    59000,
		Currency:  "usd",
	})
	if err != nil {
		t.Fatalf("ProcessEvent returned error: %v", err)
	}

	if len(applier.calls) != 1 {
		t.Fatalf("Apply called %d times, want 1", len(applier.calls))
	}
	got := applier.calls[0]
	if got.Credits != 10 {
		t.Errorf("credits = %d, want 10", got.Credits)
	}
	if got.SessionID != "cs_1" || got.Email != "buyer@example.com" {
		t.Errorf("unexpected params: %+v", got)
	}
	if recovery.calls != 0 {
		t.Errorf("recovery link generated for existing user")
	}
	if len(mail.sent) != 0 {
		t.Errorf("mail sent for existing user")
	}
}

func TestProcessEventNewUserSendsInvitation(t *testing.T) {
	applier := &fakeApplier{res: &PaymentResult{UserID: "u2", CreatedUser: true}}
	recovery := &fakeRecovery{link: "https://portal/auth/reset?token=x"}
	mail := &fakeMailer{}
	svc := NewReconcileService(applier, recovery, mail)

	err := svc.ProcessEvent(context.Background(), CheckoutEvent{
		SessionID: "cs_2",
		Email:     "new@example.com",
		Amount:    34500,
		Currency:  "usd",
	})
	if err != nil {
		t.Fatalf("ProcessEvent returned error: %v", err)
	}

	if applier.calls[0].Credits != 5 {
		t.Errorf("credits = %d, want 5", applier.calls[0].Credits)
	}
	if recovery.calls != 1 {
		t.Fatalf("recovery link generated %d times, want 1", recovery.calls)
	}
	if len(mail.sent) != 1 || mail.sent[0] != "new@example.com" {
		t.Fatalf("mail sent = %v, want one to new@example.com", mail.sent)
	}
}

func TestProcessEventMailFailureIsNonFatal(t *testing.T) {
	applier := &fakeApplier{res: &PaymentResult{UserID: "u3", CreatedUser: true}}
	recovery := &fakeRecovery{link: "link"}
	mail := &fakeMailer{err: errors.New("smtp down")}
	svc := NewReconcileService(applier, recovery, mail)

	err := svc.ProcessEvent(context.Background(), CheckoutEvent{
		SessionID: "cs_3", Email: "new@example.com", Amount: 7900,
	})
	if err != nil {
		t.Fatalf("mail failure must not fail the event, got: %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("send attempted %d times, want 1", len(mail.sent))
	}
}

func TestProcessEventRecoveryFailureIsNonFatal(t *testing.T) {
	applier := &fakeApplier{res: &PaymentResult{UserID: "u4", CreatedUser: true}}
	recovery := &fakeRecovery{err: errors.New("db down")}
	mail := &fakeMailer{}
	svc := NewReconcileService(applier, recovery, mail)

	err := svc.ProcessEvent(context.Background(), CheckoutEvent{
		SessionID: "cs_4", Email: "new@example.com", Amount: 7900,
	})
	if err != nil {
		t.Fatalf("recovery failure must not fail the event, got: %v", err)
	}
	if len(mail.sent) != 0 {
		t.Errorf("mail sent despite missing link")
	}
}

func TestProcessEventDuplicateSessionAcked(t *testing.T) {
	applier := &fakeApplier{err: ErrDuplicateSession}
	recovery := &fakeRecovery{}
	mail := &fakeMailer{}
	svc := NewReconcileService(applier, recovery, mail)

	err := svc.ProcessEvent(context.Background(), CheckoutEvent{
		SessionID: "cs_5", Email: "buyer@example.com", Amount: 59000,
	})
	if err != nil {
		t.Fatalf("duplicate session must ack, got: %v", err)
	}
	if recovery.calls != 0 || len(mail.sent) != 0 {
		t.Errorf("side effects on duplicate delivery")
	}
}

func TestProcessEventStoreFailurePropagates(t *testing.T) {
	applier := &fakeApplier{err: errors.New("connection refused")}
	svc := NewReconcileService(applier, &fakeRecovery{}, &fakeMailer{})

	err := svc.ProcessEvent(context.Background(), CheckoutEvent{
		SessionID: "cs_6", Email: "buyer@example.com", Amount: 7900,
	})
	if err == nil {
		t.Fatal("store failure must surface so the processor retries")
	}
}

func TestProcessEventBelowTierCompletesWithZeroCredits(t *testing.T) {
	applier := &fakeApplier{res: &PaymentResult{UserID: "u5"}}
	svc := NewReconcileService(applier, &fakeRecovery{}, &fakeMailer{})

	err := svc.ProcessEvent(context.Background(), CheckoutEvent{
		SessionID: "cs_7", Email: "buyer@example.com", Amount: 500,
	})
	if err != nil {
		t.Fatalf("sub-tier amount must still complete, got: %v", err)
	}
	if applier.calls[0].Credits != 0 {
		t.Errorf("credits = %d, want 0", applier.calls[0].Credits)
	}
}
