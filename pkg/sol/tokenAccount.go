package sol

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// GetUserTokenBalance sums the owner's balance across all token accounts
// holding the mint, in base units.
func (c *Client) GetUserTokenBalance(ctx context.Context, owner solana.PublicKey, tokenMint solana.PublicKey) (uint64, error) {
	acc, err := c.RpcClient.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{Mint: tokenMint.ToPointer()},
		&rpc.GetTokenAccountsOpts{
			Encoding: "jsonParsed",
		},
	)
	if err != nil {
		return 0, err
	}

	var total uint64
	for _, v := range acc.Value {
		res, err := c.RpcClient.GetTokenAccountBalance(ctx, v.Pubkey, rpc.CommitmentConfirmed)
		if err != nil {
			c.logger.Warn("failed to read token account balance",
				zap.String("account", v.Pubkey.String()), zap.Error(err))
			continue
		}
		amount, err := strconv.ParseUint(res.Value.Amount, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid balance %q for %s: %w", res.Value.Amount, v.Pubkey, err)
		}
		total += amount
	}
	return total, nil
}

// SelectOrCreateSPLTokenAccount returns the owner's existing token account
// for the mint, creating the associated token account when none exists.
func (c *Client) SelectOrCreateSPLTokenAccount(ctx context.Context, privateKey solana.PrivateKey, tokenMint solana.PublicKey) (solana.PublicKey, error) {
	user := privateKey.PublicKey()
	acc, err := c.RpcClient.GetTokenAccountsByOwner(ctx, user,
		&rpc.GetTokenAccountsConfig{Mint: tokenMint.ToPointer()},
		&rpc.GetTokenAccountsOpts{
			Encoding: "jsonParsed",
		},
	)
	if err != nil {
		c.logger.Error("failed to query token accounts",
			zap.String("mint", tokenMint.String()), zap.Error(err))
		return solana.PublicKey{}, err
	}
	if len(acc.Value) > 0 {
		return acc.Value[0].Pubkey, nil
	}

	ataAddress, _, err := solana.FindAssociatedTokenAddress(user, tokenMint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	createAtaInst, err := associatedtokenaccount.NewCreateInstruction(
		user,
		user,
		tokenMint,
	).ValidateAndBuild()
	if err != nil {
		return solana.PublicKey{}, err
	}

	latestBlockhash, err := c.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Error("failed to get latest blockhash", zap.Error(err))
		return solana.PublicKey{}, err
	}
	signers := []solana.PrivateKey{privateKey}
	if _, err := c.SendTx(ctx, latestBlockhash.Value.Blockhash, signers, []solana.Instruction{createAtaInst}, false); err != nil {
		c.logger.Error("failed to create associated token account",
			zap.String("mint", tokenMint.String()), zap.Error(err))
		return solana.PublicKey{}, err
	}
	return ataAddress, nil
}
