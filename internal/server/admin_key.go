package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

// Parameters used when hashing new admin keys.
const (
	argon2Memory  uint32 = 64 * 1024
	argon2Time    uint32 = 1
	argon2Threads uint8  = 2
	argon2KeyLen  uint32 = 32
	argon2SaltLen        = 16
)

// Each argon2id check holds argon2Memory KiB, so at most argon2MaxInFlight run
// at once. Callers wait up to argon2SlotWait for a slot.
const (
	argon2MaxInFlight = 4
	argon2SlotWait    = 2 * time.Second
	argon2MaxMemory   = 256 * 1024
)

var (
	errEmptyAdminKey = errors.New("empty_admin_key")
	errVerifierBusy  = errors.New("admin_key_verifier_busy")
	argon2Slots      = make(chan struct{}, argon2MaxInFlight)
	argon2Key        = argon2.IDKey
)

// HashAdminKey encodes key as an argon2id PHC string suitable for admin.api_key.
func HashAdminKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errEmptyAdminKey
	}
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(key), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// verifyAdminKey accepts either a plain configured key or an argon2id hash of it.
// It returns errVerifierBusy when no argon2 slot frees up in time.
func verifyAdminKey(ctx context.Context, presented, configured string) (bool, error) {
	if !strings.HasPrefix(configured, argon2Prefix) {
		return subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) == 1, nil
	}

	ctx, cancel := context.WithTimeout(ctx, argon2SlotWait)
	defer cancel()
	select {
	case argon2Slots <- struct{}{}:
	case <-ctx.Done():
		return false, errVerifierBusy
	}
	defer func() { <-argon2Slots }()
	return verifyArgon2(presented, configured), nil
}

func verifyArgon2(presented, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	params := strings.Split(parts[3], ",")
	if len(params) != 3 {
		return false
	}
	m, okM := strings.CutPrefix(params[0], "m=")
	t, okT := strings.CutPrefix(params[1], "t=")
	p, okP := strings.CutPrefix(params[2], "p=")
	if !okM || !okT || !okP {
		return false
	}
	memory, err := strconv.ParseUint(m, 10, 32)
	if err != nil || memory > argon2MaxMemory {
		return false
	}
	timeCost, err := strconv.ParseUint(t, 10, 32)
	if err != nil {
		return false
	}
	threads, err := strconv.ParseUint(p, 10, 8)
	if err != nil || threads == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return false
	}

	check := argon2Key([]byte(presented), salt, uint32(timeCost), uint32(memory), uint8(threads), uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, check) == 1
}
