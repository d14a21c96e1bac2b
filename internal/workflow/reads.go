package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"

	clierr "github.com/ggonzalez94/solagent/internal/errors"
	"github.com/ggonzalez94/solagent/internal/intent"
)

// executeRead dispatches a read intent to its data source.
func (c *Controller) executeRead(ctx context.Context, it intent.Intent) (any, error) {
	switch v := it.(type) {
	case intent.ReadBalance:
		result, err := c.Reader.Balance(ctx, v.Owner)
		if err != nil {
			return nil, err
		}
		return result, nil

	case intent.ReadTokenAccounts:
		return c.Reader.TokenAccounts(ctx, v.Owner, v.Mint)

	case intent.ReadStakeAccounts:
		return c.Reader.StakeAccounts(ctx, v.Owner)

	case intent.ReadLendObligation:
		if c.Builders.Lending == nil {
			return nil, clierr.New(clierr.CodeUnsupported, "no lending data source configured")
		}
		return c.Builders.Lending.Obligation(ctx, v.Owner)

	case intent.ReadLiquidityPositions:
		return c.liquidityPositions(ctx, v.Owner, v.Protocol)
	}
	return nil, clierr.Newf(clierr.CodeUnsupported, "no read handler for %s", it.Kind())
}

// liquidityPositions queries one protocol, or both concurrently when no
// protocol filter is given.
func (c *Controller) liquidityPositions(ctx context.Context, owner, protocol string) (any, error) {
	switch protocol {
	case "orca":
		if c.Builders.Orca == nil {
			return nil, clierr.New(clierr.CodeUnsupported, "no orca data source configured")
		}
		return c.Builders.Orca.Positions(ctx, owner)
	case "meteora":
		if c.Builders.Meteora == nil {
			return nil, clierr.New(clierr.CodeUnsupported, "no meteora data source configured")
		}
		return c.Builders.Meteora.Positions(ctx, owner)
	}

	out := map[string]any{}
	g, gctx := errgroup.WithContext(ctx)
	var orcaPositions, meteoraPositions any
	if c.Builders.Orca != nil {
		g.Go(func() error {
			v, err := c.Builders.Orca.Positions(gctx, owner)
			if err != nil {
				return err
			}
			orcaPositions = v
			return nil
		})
	}
	if c.Builders.Meteora != nil {
		g.Go(func() error {
			v, err := c.Builders.Meteora.Positions(gctx, owner)
			if err != nil {
				return err
			}
			meteoraPositions = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if orcaPositions != nil {
		out["orca"] = orcaPositions
	}
	if meteoraPositions != nil {
		out["meteora"] = meteoraPositions
	}
	return out, nil
}
