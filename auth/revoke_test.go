package auth

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewMemoryRevoker()
	r.now = func() time.Time { return now }

	if revoked, _ := r.IsRevoked(ctx, "a"); revoked {
		t.Fatal("unknown id reported as revoked")
	}

	if err := r.Revoke(ctx, "a", time.Minute); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, _ := r.IsRevoked(ctx, "a"); !revoked {
		t.Fatal("revoked id not reported")
	}

	// Already expired tokens are not stored.
	if err := r.Revoke(ctx, "b", -time.Second); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, _ := r.IsRevoked(ctx, "b"); revoked {
		t.Error("non-positive ttl should not revoke")
	}

	now = now.Add(time.Minute)
	if revoked, _ := r.IsRevoked(ctx, "a"); revoked {
		t.Error("entry should expire after its ttl")
	}
	if len(r.revoked) != 0 {
		t.Errorf("expired entry kept, %d left", len(r.revoked))
	}
}
