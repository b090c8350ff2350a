package sol

import (
	"context"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// CoverWrappedNative funds the owner's wrapped-native token account with
// the given lamport amount, creating the account when missing and syncing
// the wrapped balance.
func (c *Client) CoverWrappedNative(ctx context.Context, privateKey solana.PrivateKey, amount int64) error {
	signers := []solana.PrivateKey{privateKey}
	user := privateKey.PublicKey()
	allInstrs := make([]solana.Instruction, 0)

	acc, err := c.RpcClient.GetTokenAccountsByOwner(ctx, user,
		&rpc.GetTokenAccountsConfig{Mint: WrappedNative.ToPointer()},
		&rpc.GetTokenAccountsOpts{
			Encoding: "jsonParsed",
		},
	)
	if err != nil {
		c.logger.Error("failed to query wrapped-native accounts", zap.Error(err))
		return err
	}
	if len(acc.Value) == 0 {
		createAtaInst, err := associatedtokenaccount.NewCreateInstruction(
			user,
			user,
			WrappedNative,
		).ValidateAndBuild()
		if err != nil {
			return err
		}
		allInstrs = append(allInstrs, createAtaInst)
	}

	wrappedAccount, _, err := solana.FindAssociatedTokenAddress(user, WrappedNative)
	if err != nil {
		return err
	}

	transferInst, err := system.NewTransferInstruction(
		uint64(amount),
		user,
		wrappedAccount,
	).ValidateAndBuild()
	if err != nil {
		return err
	}
	allInstrs = append(allInstrs, transferInst)

	syncNativeInst, err := token.NewSyncNativeInstruction(
		wrappedAccount,
	).ValidateAndBuild()
	if err != nil {
		return err
	}
	allInstrs = append(allInstrs, syncNativeInst)

	recent, err := c.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("failed to get latest blockhash", zap.Error(err))
		return err
	}
	if _, err := c.SendTx(ctx, recent.Value.Blockhash, signers, allInstrs, false); err != nil {
		c.logger.Error("failed to cover wrapped native", zap.Error(err))
		return err
	}
	return nil
}

// CloseWrappedNative closes the owner's wrapped-native associated token
// account, returning its lamports to the owner.
func (c *Client) CloseWrappedNative(ctx context.Context, privateKey solana.PrivateKey) error {
	signers := []solana.PrivateKey{privateKey}
	user := privateKey.PublicKey()

	wrappedAccount, _, err := solana.FindAssociatedTokenAddress(user, WrappedNative)
	if err != nil {
		return err
	}
	closeInst, err := token.NewCloseAccountInstruction(
		wrappedAccount,
		user,
		user,
		[]solana.PublicKey{},
	).ValidateAndBuild()
	if err != nil {
		return err
	}

	recent, err := c.RpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("failed to get latest blockhash", zap.Error(err))
		return err
	}
	if _, err := c.SendTx(ctx, recent.Value.Blockhash, signers, []solana.Instruction{closeInst}, false); err != nil {
		c.logger.Error("failed to close wrapped native account", zap.Error(err))
		return err
	}
	return nil
}
