package utils

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
	"time"
)

// in-memory fallback store
type codeEntry struct {
	code      string
	expiresAt time.Time
}

var (
	codeStore   = map[string]codeEntry{}
	codeStoreMu sync.Mutex
)

// GenerateVerificationCode creates a numeric code with given length.
func GenerateVerificationCode(n int) string {
	if n <= 0 {
		n = 6
	}
	digits := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			v = big.NewInt(time.Now().UnixNano() % 10)
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}

func codeKey(email string) string {
	return "verify:email:" + email
}

// SaveCode stores a code for an email with TTL. Prefer Redis; fallback to memory.
func SaveCode(email, code string, ttl time.Duration) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, codeKey(email), code, ttl).Err(); err == nil {
			return
		}
	}
	codeStoreMu.Lock()
	codeStore[email] = codeEntry{code: code, expiresAt: time.Now().Add(ttl)}
	codeStoreMu.Unlock()
}

// VerifyAndConsumeCode checks a code and consumes it if valid.
func VerifyAndConsumeCode(email, code string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if val, err := rc.GetDel(ctx, codeKey(email)).Result(); err == nil {
			return val == code
		}
		// On Redis error (e.g., network), fall through to memory fallback
	}
	codeStoreMu.Lock()
	defer codeStoreMu.Unlock()
	entry, ok := codeStore[email]
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		delete(codeStore, email)
		return false
	}
	if entry.code != code {
		return false
	}
	delete(codeStore, email)
	return true
}

// EmailCooldownTrySet sets a cooldown key for sending email code. Returns true if set, false if cooling down.
func EmailCooldownTrySet(email string, cooldown time.Duration) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ok, _ := rc.SetNX(ctx, "cooldown:email:"+email, "1", cooldown).Result()
		return ok
	}
	key := "cooldown:email:mem:" + email
	codeStoreMu.Lock()
	defer codeStoreMu.Unlock()
	if entry, ok := codeStore[key]; ok && time.Now().Before(entry.expiresAt) {
		return false
	}
	codeStore[key] = codeEntry{code: "1", expiresAt: time.Now().Add(cooldown)}
	return true
}
