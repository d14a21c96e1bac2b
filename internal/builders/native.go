package builders

import (
	"context"
	"fmt"
	"time"

	"github.com/ggonzalez94/solagent/internal/chain"
	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/intent"
	"github.com/ggonzalez94/solagent/internal/soltx"
)

// NativeBuilder composes transactions for the native programs locally:
// system transfers, SPL token transfers and the stake program.
type NativeBuilder struct {
	client chain.Client
	now    func() time.Time
}

func NewNativeBuilder(client chain.Client) *NativeBuilder {
	return &NativeBuilder{client: client, now: time.Now}
}

func (b *NativeBuilder) compose(ctx context.Context, payer string, compute ComputeBudget, instructions ...soltx.Instruction) (string, error) {
	withBudget := computeInstructions(compute)
	withBudget = append(withBudget, instructions...)
	blockhash, err := b.client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	tx, err := soltx.MessageBase64(payer, blockhash, withBudget)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "serialize transaction", err)
	}
	return tx, nil
}

func computeInstructions(compute ComputeBudget) []soltx.Instruction {
	var out []soltx.Instruction
	if compute.UnitLimit != nil {
		out = append(out, soltx.ComputeUnitLimit(uint32(*compute.UnitLimit)))
	}
	if compute.UnitPrice != nil {
		out = append(out, soltx.ComputeUnitPrice(uint64(*compute.UnitPrice)))
	}
	return out
}

func (b *NativeBuilder) TransferNative(ctx context.Context, payer string, it intent.TransferNative, compute ComputeBudget) (string, error) {
	lamports, err := soltx.ParseLamports(it.Lamports)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "parse lamports", err)
	}
	return b.compose(ctx, payer, compute, soltx.SystemTransfer(payer, it.To, lamports))
}

// TransferSPL moves tokens between associated token accounts, creating the
// recipient's account when it does not exist yet.
func (b *NativeBuilder) TransferSPL(ctx context.Context, payer string, it intent.TransferSPL, compute ComputeBudget) (string, error) {
	amount, err := soltx.ParseLamports(it.Amount)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "parse token amount", err)
	}
	decimals, err := b.client.GetMintDecimals(ctx, it.Mint)
	if err != nil {
		return "", err
	}
	source, err := soltx.DeriveAssociatedTokenAccount(payer, it.Mint)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "derive source token account", err)
	}
	destination, err := soltx.DeriveAssociatedTokenAccount(it.To, it.Mint)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "derive destination token account", err)
	}
	return b.compose(ctx, payer, compute,
		soltx.CreateAssociatedTokenAccountIdempotent(payer, destination, it.To, it.Mint),
		soltx.TokenTransferChecked(source, it.Mint, destination, payer, amount, decimals),
	)
}

// StakeCreate allocates a seeded stake account, funds and initializes it,
// so only the owner key signs. When a vote account is given the delegation
// rides in the same transaction.
func (b *NativeBuilder) StakeCreate(ctx context.Context, payer string, it intent.StakeCreate, compute ComputeBudget) (string, error) {
	lamports, err := soltx.ParseLamports(it.Lamports)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "parse lamports", err)
	}
	seed := fmt.Sprintf("stake:%d", b.now().UnixNano())
	stakeAccount, err := soltx.CreateWithSeed(payer, seed, soltx.StakeProgramID)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "derive stake account", err)
	}
	create, err := soltx.SystemCreateAccountWithSeed(payer, stakeAccount, payer, seed, lamports, soltx.StakeAccountSpace, soltx.StakeProgramID)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "compose create account", err)
	}
	initialize, err := soltx.StakeInitialize(stakeAccount, payer)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "compose stake initialize", err)
	}
	instructions := []soltx.Instruction{create, initialize}
	if it.VoteAccount != "" {
		instructions = append(instructions, soltx.StakeDelegate(stakeAccount, it.VoteAccount, payer))
	}
	return b.compose(ctx, payer, compute, instructions...)
}

func (b *NativeBuilder) StakeDelegate(ctx context.Context, payer string, it intent.StakeDelegate, compute ComputeBudget) (string, error) {
	return b.compose(ctx, payer, compute, soltx.StakeDelegate(it.StakeAccount, it.VoteAccount, payer))
}

func (b *NativeBuilder) StakeAuthorize(ctx context.Context, payer string, it intent.StakeAuthorize, compute ComputeBudget) (string, error) {
	kind := uint32(soltx.StakeAuthorityStaker)
	if it.AuthorityType == "withdrawer" {
		kind = soltx.StakeAuthorityWithdrawer
	}
	ix, err := soltx.StakeAuthorize(it.StakeAccount, payer, it.NewAuthority, kind)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "compose stake authorize", err)
	}
	return b.compose(ctx, payer, compute, ix)
}

func (b *NativeBuilder) StakeDeactivate(ctx context.Context, payer string, it intent.StakeDeactivate, compute ComputeBudget) (string, error) {
	return b.compose(ctx, payer, compute, soltx.StakeDeactivate(it.StakeAccount, payer))
}

func (b *NativeBuilder) StakeWithdraw(ctx context.Context, payer string, it intent.StakeWithdraw, compute ComputeBudget) (string, error) {
	lamports, err := soltx.ParseLamports(it.Lamports)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "parse lamports", err)
	}
	return b.compose(ctx, payer, compute, soltx.StakeWithdraw(it.StakeAccount, it.To, payer, lamports))
}
