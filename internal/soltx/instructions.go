package soltx

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
)

const (
	SystemProgramID        = "11111111111111111111111111111111"
	StakeProgramID         = "Stake11111111111111111111111111111111111111"
	TokenProgramID         = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	ComputeBudgetProgramID = "ComputeBudget111111111111111111111111111111"

	SysvarClockID         = "SysvarC1ock11111111111111111111111111111111"
	SysvarRentID          = "SysvarRent111111111111111111111111111111111"
	SysvarStakeHistoryID  = "SysvarStakeHistory1111111111111111111111111"
	StakeConfigID         = "StakeConfig11111111111111111111111111111111"
	AssociatedTokenProgID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
)

// ParseLamports converts a minimal-unit decimal string to uint64.
func ParseLamports(v string) (uint64, error) {
	n, ok := new(big.Int).SetString(v, 10)
	if !ok || n.Sign() < 0 || !n.IsUint64() {
		return 0, fmt.Errorf("invalid minimal-unit amount %q", v)
	}
	return n.Uint64(), nil
}

// SystemTransfer moves lamports between system accounts.
func SystemTransfer(from, to string, lamports uint64) Instruction {
	data := appendU32(nil, 2) // system instruction index: Transfer
	data = appendU64(data, lamports)
	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			{Address: from, Signer: true, Writable: true},
			{Address: to, Writable: true},
		},
		Data: data,
	}
}

// TokenTransferChecked moves SPL tokens with a decimals assertion.
func TokenTransferChecked(source, mint, destination, owner string, amount uint64, decimals int) Instruction {
	data := []byte{12} // token instruction index: TransferChecked
	data = appendU64(data, amount)
	data = append(data, byte(decimals))
	return Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{Address: source, Writable: true},
			{Address: mint},
			{Address: destination, Writable: true},
			{Address: owner, Signer: true},
		},
		Data: data,
	}
}

// CreateAssociatedTokenAccountIdempotent creates the destination ATA if it
// does not exist yet.
func CreateAssociatedTokenAccountIdempotent(payer, ata, owner, mint string) Instruction {
	return Instruction{
		ProgramID: AssociatedTokenProgID,
		Accounts: []AccountMeta{
			{Address: payer, Signer: true, Writable: true},
			{Address: ata, Writable: true},
			{Address: owner},
			{Address: mint},
			{Address: SystemProgramID},
			{Address: TokenProgramID},
		},
		Data: []byte{1}, // CreateIdempotent
	}
}

// Stake program instruction indices.
const (
	stakeIxInitialize = 0
	stakeIxAuthorize  = 1
	stakeIxDelegate   = 2
	stakeIxWithdraw   = 4
	stakeIxDeactivate = 5
)

const (
	StakeAuthorityStaker     = 0
	StakeAuthorityWithdrawer = 1
)

// SystemCreateAccount allocates a fresh account owned by a program.
func SystemCreateAccount(from, newAccount string, lamports, space uint64, ownerProgram string) (Instruction, error) {
	ownerRaw, err := base58.Decode(ownerProgram)
	if err != nil || len(ownerRaw) != 32 {
		return Instruction{}, fmt.Errorf("invalid owner program %q", ownerProgram)
	}
	data := appendU32(nil, 0) // system instruction index: CreateAccount
	data = appendU64(data, lamports)
	data = appendU64(data, space)
	data = append(data, ownerRaw...)
	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			{Address: from, Signer: true, Writable: true},
			{Address: newAccount, Signer: true, Writable: true},
		},
		Data: data,
	}, nil
}

// StakeInitialize sets both stake authorities to the given authority with
// no lockup.
func StakeInitialize(stakeAccount, authority string) (Instruction, error) {
	authRaw, err := base58.Decode(authority)
	if err != nil || len(authRaw) != 32 {
		return Instruction{}, fmt.Errorf("invalid authority %q", authority)
	}
	data := appendU32(nil, stakeIxInitialize)
	data = append(data, authRaw...) // staker
	data = append(data, authRaw...) // withdrawer
	data = appendU64(data, 0)       // lockup unix timestamp
	data = appendU64(data, 0)       // lockup epoch
	data = append(data, make([]byte, 32)...) // lockup custodian
	return Instruction{
		ProgramID: StakeProgramID,
		Accounts: []AccountMeta{
			{Address: stakeAccount, Writable: true},
			{Address: SysvarRentID},
		},
		Data: data,
	}, nil
}

// StakeDelegate delegates an initialized stake account to a vote account.
func StakeDelegate(stakeAccount, voteAccount, authority string) Instruction {
	return Instruction{
		ProgramID: StakeProgramID,
		Accounts: []AccountMeta{
			{Address: stakeAccount, Writable: true},
			{Address: voteAccount},
			{Address: SysvarClockID},
			{Address: SysvarStakeHistoryID},
			{Address: StakeConfigID},
			{Address: authority, Signer: true},
		},
		Data: appendU32(nil, stakeIxDelegate),
	}
}

// StakeAuthorize rotates the staker or withdrawer authority.
func StakeAuthorize(stakeAccount, authority, newAuthority string, authorityKind uint32) (Instruction, error) {
	newRaw, err := base58.Decode(newAuthority)
	if err != nil || len(newRaw) != 32 {
		return Instruction{}, fmt.Errorf("invalid new authority %q", newAuthority)
	}
	data := appendU32(nil, stakeIxAuthorize)
	data = append(data, newRaw...)
	data = appendU32(data, authorityKind)
	return Instruction{
		ProgramID: StakeProgramID,
		Accounts: []AccountMeta{
			{Address: stakeAccount, Writable: true},
			{Address: SysvarClockID},
			{Address: authority, Signer: true},
		},
		Data: data,
	}, nil
}

// StakeDeactivate begins cooldown for a delegated stake account.
func StakeDeactivate(stakeAccount, authority string) Instruction {
	return Instruction{
		ProgramID: StakeProgramID,
		Accounts: []AccountMeta{
			{Address: stakeAccount, Writable: true},
			{Address: SysvarClockID},
			{Address: authority, Signer: true},
		},
		Data: appendU32(nil, stakeIxDeactivate),
	}
}

// StakeWithdraw moves lamports out of a stake account.
func StakeWithdraw(stakeAccount, to, authority string, lamports uint64) Instruction {
	data := appendU32(nil, stakeIxWithdraw)
	data = appendU64(data, lamports)
	return Instruction{
		ProgramID: StakeProgramID,
		Accounts: []AccountMeta{
			{Address: stakeAccount, Writable: true},
			{Address: to, Writable: true},
			{Address: SysvarClockID},
			{Address: SysvarStakeHistoryID},
			{Address: authority, Signer: true},
		},
		Data: data,
	}
}

// ComputeUnitLimit caps the compute units a transaction may consume.
func ComputeUnitLimit(units uint32) Instruction {
	data := []byte{2} // SetComputeUnitLimit
	data = appendU32(data, units)
	return Instruction{ProgramID: ComputeBudgetProgramID, Data: data}
}

// ComputeUnitPrice sets the priority fee in micro-lamports per unit.
func ComputeUnitPrice(microLamports uint64) Instruction {
	data := []byte{3} // SetComputeUnitPrice
	data = appendU64(data, microLamports)
	return Instruction{ProgramID: ComputeBudgetProgramID, Data: data}
}

// CreateWithSeed derives the address of a seeded account so the base key
// alone can authorize its creation.
func CreateWithSeed(base, seed, ownerProgram string) (string, error) {
	baseRaw, err := base58.Decode(base)
	if err != nil || len(baseRaw) != 32 {
		return "", fmt.Errorf("invalid base address %q", base)
	}
	ownerRaw, err := base58.Decode(ownerProgram)
	if err != nil || len(ownerRaw) != 32 {
		return "", fmt.Errorf("invalid owner program %q", ownerProgram)
	}
	h := sha256.New()
	h.Write(baseRaw)
	h.Write([]byte(seed))
	h.Write(ownerRaw)
	return base58.Encode(h.Sum(nil)), nil
}

// SystemCreateAccountWithSeed allocates a seeded account so only the base
// signer is needed, no ephemeral keypair.
func SystemCreateAccountWithSeed(from, newAccount, base, seed string, lamports, space uint64, ownerProgram string) (Instruction, error) {
	baseRaw, err := base58.Decode(base)
	if err != nil || len(baseRaw) != 32 {
		return Instruction{}, fmt.Errorf("invalid base address %q", base)
	}
	ownerRaw, err := base58.Decode(ownerProgram)
	if err != nil || len(ownerRaw) != 32 {
		return Instruction{}, fmt.Errorf("invalid owner program %q", ownerProgram)
	}
	data := appendU32(nil, 3) // system instruction index: CreateAccountWithSeed
	data = append(data, baseRaw...)
	data = appendU64(data, uint64(len(seed)))
	data = append(data, []byte(seed)...)
	data = appendU64(data, lamports)
	data = appendU64(data, space)
	data = append(data, ownerRaw...)
	accounts := []AccountMeta{
		{Address: from, Signer: true, Writable: true},
		{Address: newAccount, Writable: true},
	}
	if base != from {
		accounts = append(accounts, AccountMeta{Address: base, Signer: true})
	}
	return Instruction{ProgramID: SystemProgramID, Accounts: accounts, Data: data}, nil
}

// StakeAccountSpace is the serialized size of a stake account.
const StakeAccountSpace = 200
