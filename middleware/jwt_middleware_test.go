package middleware

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// Logout writes, per-request reads and the hourly sweep all hit the
// blacklist at once; run them together so the race detector can object.
func TestBlacklistConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				BlacklistToken(fmt.Sprintf("token-%d-%d", n, j), time.Now().Add(-time.Minute))
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				IsTokenBlacklisted(fmt.Sprintf("token-%d-%d", n, j))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				purgeExpiredTokens(time.Now())
			}
		}()
	}

	wg.Wait()
}

func TestBlacklistPurgeKeepsUnexpired(t *testing.T) {
	BlacklistToken("expired-token", time.Now().Add(-time.Hour))
	BlacklistToken("live-token", time.Now().Add(time.Hour))

	purgeExpiredTokens(time.Now())

	if IsTokenBlacklisted("expired-token") {
		t.Error("expired token survived the purge")
	}
	if !IsTokenBlacklisted("live-token") {
		t.Error("unexpired token was purged")
	}
}
