package soltx

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// FindProgramAddress derives the canonical program address for a seed set:
// the highest bump whose hash falls off the ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	programRaw, err := base58.Decode(programID)
	if err != nil || len(programRaw) != 32 {
		return "", 0, fmt.Errorf("invalid program id %q", programID)
	}
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			if len(seed) > 32 {
				return "", 0, fmt.Errorf("seed longer than 32 bytes")
			}
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programRaw)
		h.Write([]byte("ProgramDerivedAddress"))
		candidate := h.Sum(nil)
		if !onCurve(candidate) {
			return base58.Encode(candidate), uint8(bump), nil
		}
	}
	return "", 0, fmt.Errorf("no viable program address bump for seeds")
}

// DeriveAssociatedTokenAccount computes the canonical token account of an
// owner for one mint.
func DeriveAssociatedTokenAccount(owner, mint string) (string, error) {
	ownerRaw, err := base58.Decode(owner)
	if err != nil || len(ownerRaw) != 32 {
		return "", fmt.Errorf("invalid owner address %q", owner)
	}
	mintRaw, err := base58.Decode(mint)
	if err != nil || len(mintRaw) != 32 {
		return "", fmt.Errorf("invalid mint address %q", mint)
	}
	tokenProgRaw, err := base58.Decode(TokenProgramID)
	if err != nil {
		return "", err
	}
	addr, _, err := FindProgramAddress([][]byte{ownerRaw, tokenProgRaw, mintRaw}, AssociatedTokenProgID)
	return addr, err
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
