// Package soltx serializes legacy transaction messages for the handful of
// native programs the engine composes itself: system transfers, SPL token
// transfers, stake program operations and compute budget requests.
// Protocol-specific transactions come pre-serialized from their composer
// services and never pass through this package.
package soltx

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/mr-tron/base58"
)

// AccountMeta names one account an instruction touches.
type AccountMeta struct {
	Address  string
	Signer   bool
	Writable bool
}

// Instruction is one program invocation before index compilation.
type Instruction struct {
	ProgramID string
	Accounts  []AccountMeta
	Data      []byte
}

// Message compiles instructions into a serialized legacy message with a
// shortvec-prefixed empty signature table in front, ready for signing.
func Message(payer, recentBlockhash string, instructions []Instruction) ([]byte, error) {
	if payer == "" {
		return nil, fmt.Errorf("message requires a fee payer")
	}
	if len(instructions) == 0 {
		return nil, fmt.Errorf("message requires at least one instruction")
	}

	keys, err := compileKeys(payer, instructions)
	if err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	msg.WriteByte(byte(keys.numSigners))
	msg.WriteByte(byte(keys.numReadonlySigned))
	msg.WriteByte(byte(keys.numReadonlyUnsigned))

	writeShortvecLen(&msg, len(keys.ordered))
	for _, addr := range keys.ordered {
		raw, err := base58.Decode(addr)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("invalid account address %q", addr)
		}
		msg.Write(raw)
	}

	hash, err := base58.Decode(recentBlockhash)
	if err != nil || len(hash) != 32 {
		return nil, fmt.Errorf("invalid recent blockhash %q", recentBlockhash)
	}
	msg.Write(hash)

	writeShortvecLen(&msg, len(instructions))
	for _, ix := range instructions {
		programIndex, ok := keys.index[ix.ProgramID]
		if !ok {
			return nil, fmt.Errorf("program %q missing from key table", ix.ProgramID)
		}
		msg.WriteByte(byte(programIndex))
		writeShortvecLen(&msg, len(ix.Accounts))
		for _, acc := range ix.Accounts {
			idx, ok := keys.index[acc.Address]
			if !ok {
				return nil, fmt.Errorf("account %q missing from key table", acc.Address)
			}
			msg.WriteByte(byte(idx))
		}
		writeShortvecLen(&msg, len(ix.Data))
		msg.Write(ix.Data)
	}

	// Prepend the unsigned signature table: one zeroed slot per signer.
	var tx bytes.Buffer
	writeShortvecLen(&tx, keys.numSigners)
	tx.Write(make([]byte, keys.numSigners*64))
	tx.Write(msg.Bytes())
	return tx.Bytes(), nil
}

// MessageBase64 is Message with the wire encoding RPC endpoints expect.
func MessageBase64(payer, recentBlockhash string, instructions []Instruction) (string, error) {
	raw, err := Message(payer, recentBlockhash, instructions)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

type keyTable struct {
	ordered             []string
	index               map[string]int
	numSigners          int
	numReadonlySigned   int
	numReadonlyUnsigned int
}

type keyProps struct {
	signer   bool
	writable bool
}

// compileKeys orders accounts per the legacy layout: writable signers,
// readonly signers, writable non-signers, readonly non-signers. The payer
// is always the first writable signer.
func compileKeys(payer string, instructions []Instruction) (keyTable, error) {
	props := map[string]keyProps{payer: {signer: true, writable: true}}
	for _, ix := range instructions {
		for _, acc := range ix.Accounts {
			p := props[acc.Address]
			p.signer = p.signer || acc.Signer
			p.writable = p.writable || acc.Writable
			props[acc.Address] = p
		}
		if _, ok := props[ix.ProgramID]; !ok {
			props[ix.ProgramID] = keyProps{}
		}
	}

	group := func(addr string) int {
		p := props[addr]
		switch {
		case addr == payer:
			return 0
		case p.signer && p.writable:
			return 1
		case p.signer:
			return 2
		case p.writable:
			return 3
		default:
			return 4
		}
	}

	ordered := make([]string, 0, len(props))
	for addr := range props {
		ordered = append(ordered, addr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		gi, gj := group(ordered[i]), group(ordered[j])
		if gi != gj {
			return gi < gj
		}
		return ordered[i] < ordered[j]
	})

	table := keyTable{ordered: ordered, index: make(map[string]int, len(ordered))}
	for i, addr := range ordered {
		p := props[addr]
		table.index[addr] = i
		if p.signer {
			table.numSigners++
			if !p.writable {
				table.numReadonlySigned++
			}
		} else if !p.writable {
			table.numReadonlyUnsigned++
		}
	}
	if table.numSigners > 127 || len(ordered) > 255 {
		return keyTable{}, fmt.Errorf("too many accounts for a legacy message")
	}
	return table, nil
}

func writeShortvecLen(buf *bytes.Buffer, v int) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}

func appendU64(data []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(data, tmp[:]...)
}

func appendU32(data []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(data, tmp[:]...)
}
