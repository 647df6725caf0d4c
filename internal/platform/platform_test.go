package platform

import "testing"

func TestAuthorizeRejectsNonAdmin(t *testing.T) {
	p, err := New("admin", "treasury:main", DefaultFeeBps)
	if err != nil {
		t.Fatalf("new platform: %v", err)
	}

	if err := p.SetFee("someone-else", 75); err != ErrUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if got := p.Snapshot().FeeBps; got != DefaultFeeBps {
		t.Fatalf("fee changed by unauthorized call: %d", got)
	}
}

func TestSetFeeEnforcesCeiling(t *testing.T) {
	p, _ := New("admin", "treasury:main", DefaultFeeBps)

	if err := p.SetFee("admin", MaxFeeBps+1); err != ErrInvalidFee {
		t.Fatalf("expected invalid fee, got %v", err)
	}
	if err := p.SetFee("admin", 100); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	if got := p.Snapshot().FeeBps; got != 100 {
		t.Fatalf("expected fee 100, got %d", got)
	}
}

func TestPauseUnpause(t *testing.T) {
	p, _ := New("admin", "treasury:main", DefaultFeeBps)

	if p.Snapshot().Paused {
		t.Fatal("platform should start unpaused")
	}
	if err := p.Pause("admin"); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !p.Snapshot().Paused {
		t.Fatal("expected paused")
	}
	if err := p.Unpause("admin"); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if p.Snapshot().Paused {
		t.Fatal("expected unpaused")
	}
}

func TestSetTreasury(t *testing.T) {
	p, _ := New("admin", "treasury:main", DefaultFeeBps)

	if err := p.SetTreasury("admin", ""); err != ErrInvalidTreasury {
		t.Fatalf("expected invalid treasury, got %v", err)
	}
	if err := p.SetTreasury("admin", "treasury:backup"); err != nil {
		t.Fatalf("set treasury: %v", err)
	}
	if got := p.Snapshot().Treasury; got != "treasury:backup" {
		t.Fatalf("expected treasury:backup, got %s", got)
	}
}
