package signer

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// Signer produces ed25519 signatures for transaction messages. The fee
// payer is always the signer's own address.
type Signer interface {
	Address() string
	Sign(message []byte) ([]byte, error)
}

// SignTransaction signs a serialized unsigned transaction in place. The
// wire layout is a shortvec-prefixed signature array followed by the
// message bytes; the fee payer signature occupies slot zero.
func SignTransaction(s Signer, raw []byte) ([]byte, error) {
	count, offset, err := decodeShortvecLen(raw)
	if err != nil {
		return nil, fmt.Errorf("parse signature count: %w", err)
	}
	if count < 1 {
		return nil, fmt.Errorf("transaction declares no required signatures")
	}
	sigBytes := count * ed25519.SignatureSize
	if len(raw) < offset+sigBytes {
		return nil, fmt.Errorf("transaction shorter than its signature table")
	}
	message := raw[offset+sigBytes:]
	sig, err := s.Sign(message)
	if err != nil {
		return nil, err
	}
	if len(sig) != ed25519.SignatureSize {
		return nil, fmt.Errorf("unexpected signature length %d", len(sig))
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	copy(out[offset:], sig)
	return out, nil
}

// decodeShortvecLen reads the compact-u16 length prefix used for the
// signature array. At most three bytes, seven payload bits each.
func decodeShortvecLen(raw []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3; i++ {
		if i >= len(raw) {
			return 0, 0, fmt.Errorf("truncated length prefix")
		}
		b := raw[i]
		value |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("length prefix longer than three bytes")
}

func encodeAddress(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}
