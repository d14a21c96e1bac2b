package chain

import "context"

// DecimalsAdapter exposes on-chain mint decimals through the narrow
// interface the token resolver consumes.
type DecimalsAdapter struct {
	client Client
}

func NewDecimalsAdapter(client Client) *DecimalsAdapter {
	return &DecimalsAdapter{client: client}
}

func (a *DecimalsAdapter) MintDecimals(ctx context.Context, mint string) (int, error) {
	return a.client.GetMintDecimals(ctx, mint)
}
