package nemoswap

import (
	"bytes"
	"context"
	"fmt"

	"cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"lukechampine.com/uint128"
)

// swapArgs is the borsh argument block shared by the swap instructions.
type swapArgs struct {
	amount                 uint64
	otherAmountThreshold   uint64
	sqrtPriceLimit         uint128.Uint128
	amountSpecifiedIsInput bool
	aToB                   bool
}

func swapArgsFromQuote(quote *SwapQuote) (swapArgs, error) {
	if quote.Amount.GT(MaxUint64) || quote.OtherAmountThreshold.GT(MaxUint64) {
		return swapArgs{}, fmt.Errorf("%w: instruction amount exceeds u64", ErrArithmeticOverflow)
	}
	return swapArgs{
		amount:                 quote.Amount.Uint64(),
		otherAmountThreshold:   quote.OtherAmountThreshold.Uint64(),
		sqrtPriceLimit:         uint128.FromBig(quote.SqrtPriceLimit.BigInt()),
		amountSpecifiedIsInput: quote.AmountSpecifiedIsInput,
		aToB:                   quote.AToB,
	}, nil
}

func (a swapArgs) encode(enc *bin.Encoder) error {
	if err := enc.Encode(a.amount); err != nil {
		return fmt.Errorf("failed to encode amount: %w", err)
	}
	if err := enc.Encode(a.otherAmountThreshold); err != nil {
		return fmt.Errorf("failed to encode otherAmountThreshold: %w", err)
	}
	if err := enc.Encode(a.sqrtPriceLimit.Lo); err != nil {
		return fmt.Errorf("failed to encode sqrtPriceLimit lo: %w", err)
	}
	if err := enc.Encode(a.sqrtPriceLimit.Hi); err != nil {
		return fmt.Errorf("failed to encode sqrtPriceLimit hi: %w", err)
	}
	if err := enc.Encode(a.amountSpecifiedIsInput); err != nil {
		return fmt.Errorf("failed to encode amountSpecifiedIsInput: %w", err)
	}
	if err := enc.Encode(a.aToB); err != nil {
		return fmt.Errorf("failed to encode aToB: %w", err)
	}
	return nil
}

// SwapAccounts collects the account addresses a single-hop swap references.
type SwapAccounts struct {
	TokenAuthority     solana.PublicKey
	Whirlpool          solana.PublicKey
	TokenOwnerAccountA solana.PublicKey
	TokenVaultA        solana.PublicKey
	TokenOwnerAccountB solana.PublicKey
	TokenVaultB        solana.PublicKey
	TickArrays         [3]solana.PublicKey
	Oracle             solana.PublicKey
}

// NewSwapInstruction builds the swap instruction from a quote. Amounts are
// taken from the quote verbatim; nothing is recomputed here.
func NewSwapInstruction(quote *SwapQuote, accounts SwapAccounts) (solana.Instruction, error) {
	args, err := swapArgsFromQuote(quote)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(SwapDiscriminator, false); err != nil {
		return nil, fmt.Errorf("failed to write discriminator: %w", err)
	}
	if err := args.encode(enc); err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{}
	metas.Append(solana.NewAccountMeta(TOKEN_PROGRAM_ID, false, false))           // 0: token_program
	metas.Append(solana.NewAccountMeta(accounts.TokenAuthority, false, true))     // 1: token_authority (signer)
	metas.Append(solana.NewAccountMeta(accounts.Whirlpool, true, false))          // 2: whirlpool (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountA, true, false)) // 3: token_owner_account_a (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenVaultA, true, false))        // 4: token_vault_a (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountB, true, false)) // 5: token_owner_account_b (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenVaultB, true, false))        // 6: token_vault_b (writable)
	metas.Append(solana.NewAccountMeta(accounts.TickArrays[0], true, false))      // 7: tick_array_0 (writable)
	metas.Append(solana.NewAccountMeta(accounts.TickArrays[1], true, false))      // 8: tick_array_1 (writable)
	metas.Append(solana.NewAccountMeta(accounts.TickArrays[2], true, false))      // 9: tick_array_2 (writable)
	metas.Append(solana.NewAccountMeta(accounts.Oracle, true, false))             // 10: oracle (writable)

	return solana.NewInstruction(NEMOSWAP_PROGRAM_ID, metas, buf.Bytes()), nil
}

// FeeDiscountAccounts extends SwapAccounts with the burn-side accounts.
type FeeDiscountAccounts struct {
	SwapAccounts
	DiscountToken             solana.PublicKey
	TokenOwnerAccountDiscount solana.PublicKey
	WhirlpoolDiscountInfo     solana.PublicKey
}

// NewSwapWithFeeDiscountInstruction builds the discounted swap variant,
// which additionally burns the quoted discount-token amount from the
// trader's discount token account.
func NewSwapWithFeeDiscountInstruction(quote *FeeDiscountSwapQuote, accounts FeeDiscountAccounts) (solana.Instruction, error) {
	args, err := swapArgsFromQuote(&quote.SwapQuote)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(SwapWithFeeDiscountDiscriminator, false); err != nil {
		return nil, fmt.Errorf("failed to write discriminator: %w", err)
	}
	if err := args.encode(enc); err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{}
	metas.Append(solana.NewAccountMeta(TOKEN_PROGRAM_ID, false, false))                  // 0: token_program
	metas.Append(solana.NewAccountMeta(accounts.TokenAuthority, false, true))            // 1: token_authority (signer)
	metas.Append(solana.NewAccountMeta(accounts.Whirlpool, true, false))                 // 2: whirlpool (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountA, true, false))        // 3: token_owner_account_a (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenVaultA, true, false))               // 4: token_vault_a (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountB, true, false))        // 5: token_owner_account_b (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenVaultB, true, false))               // 6: token_vault_b (writable)
	metas.Append(solana.NewAccountMeta(accounts.TickArrays[0], true, false))             // 7: tick_array_0 (writable)
	metas.Append(solana.NewAccountMeta(accounts.TickArrays[1], true, false))             // 8: tick_array_1 (writable)
	metas.Append(solana.NewAccountMeta(accounts.TickArrays[2], true, false))             // 9: tick_array_2 (writable)
	metas.Append(solana.NewAccountMeta(accounts.Oracle, true, false))                    // 10: oracle (writable)
	metas.Append(solana.NewAccountMeta(accounts.DiscountToken, true, false))             // 11: discount_token mint (writable, burned)
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountDiscount, true, false)) // 12: trader discount token account (writable)
	metas.Append(solana.NewAccountMeta(accounts.WhirlpoolDiscountInfo, false, false))    // 13: whirlpool_discount_info

	return solana.NewInstruction(NEMOSWAP_PROGRAM_ID, metas, buf.Bytes()), nil
}

// TwoHopSwapAccounts collects the accounts of both legs.
type TwoHopSwapAccounts struct {
	TokenAuthority solana.PublicKey

	WhirlpoolOne          solana.PublicKey
	TokenOwnerAccountOneA solana.PublicKey
	TokenVaultOneA        solana.PublicKey
	TokenOwnerAccountOneB solana.PublicKey
	TokenVaultOneB        solana.PublicKey
	TickArraysOne         [3]solana.PublicKey
	OracleOne             solana.PublicKey

	WhirlpoolTwo          solana.PublicKey
	TokenOwnerAccountTwoA solana.PublicKey
	TokenVaultTwoA        solana.PublicKey
	TokenOwnerAccountTwoB solana.PublicKey
	TokenVaultTwoB        solana.PublicKey
	TickArraysTwo         [3]solana.PublicKey
	OracleTwo             solana.PublicKey
}

// NewTwoHopSwapInstruction builds the atomic two-hop swap from both leg
// quotes. The threshold applies to the route's far side: minimum final
// output for exact-input routes, maximum initial input for exact-output.
func NewTwoHopSwapInstruction(quoteOne, quoteTwo *SwapQuote, otherAmountThreshold math.Int, accounts TwoHopSwapAccounts) (solana.Instruction, error) {
	if quoteOne.AmountSpecifiedIsInput != quoteTwo.AmountSpecifiedIsInput {
		return nil, fmt.Errorf("%w: mixed swap modes across hops", ErrRouteMismatch)
	}
	amount := quoteOne.Amount
	if !quoteOne.AmountSpecifiedIsInput {
		amount = quoteTwo.Amount
	}
	if amount.GT(MaxUint64) || otherAmountThreshold.GT(MaxUint64) {
		return nil, fmt.Errorf("%w: instruction amount exceeds u64", ErrArithmeticOverflow)
	}

	limitOne := uint128.FromBig(quoteOne.SqrtPriceLimit.BigInt())
	limitTwo := uint128.FromBig(quoteTwo.SqrtPriceLimit.BigInt())

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteBytes(TwoHopSwapDiscriminator, false); err != nil {
		return nil, fmt.Errorf("failed to write discriminator: %w", err)
	}
	if err := enc.Encode(amount.Uint64()); err != nil {
		return nil, fmt.Errorf("failed to encode amount: %w", err)
	}
	if err := enc.Encode(otherAmountThreshold.Uint64()); err != nil {
		return nil, fmt.Errorf("failed to encode otherAmountThreshold: %w", err)
	}
	if err := enc.Encode(quoteOne.AmountSpecifiedIsInput); err != nil {
		return nil, fmt.Errorf("failed to encode amountSpecifiedIsInput: %w", err)
	}
	if err := enc.Encode(quoteOne.AToB); err != nil {
		return nil, fmt.Errorf("failed to encode aToBOne: %w", err)
	}
	if err := enc.Encode(quoteTwo.AToB); err != nil {
		return nil, fmt.Errorf("failed to encode aToBTwo: %w", err)
	}
	for _, limb := range []uint64{limitOne.Lo, limitOne.Hi, limitTwo.Lo, limitTwo.Hi} {
		if err := enc.Encode(limb); err != nil {
			return nil, fmt.Errorf("failed to encode sqrtPriceLimit: %w", err)
		}
	}

	metas := solana.AccountMetaSlice{}
	metas.Append(solana.NewAccountMeta(TOKEN_PROGRAM_ID, false, false))              // 0: token_program
	metas.Append(solana.NewAccountMeta(accounts.TokenAuthority, false, true))        // 1: token_authority (signer)
	metas.Append(solana.NewAccountMeta(accounts.WhirlpoolOne, true, false))          // 2: whirlpool_one (writable)
	metas.Append(solana.NewAccountMeta(accounts.WhirlpoolTwo, true, false))          // 3: whirlpool_two (writable)
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountOneA, true, false)) // 4
	metas.Append(solana.NewAccountMeta(accounts.TokenVaultOneA, true, false))        // 5
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountOneB, true, false)) // 6
	metas.Append(solana.NewAccountMeta(accounts.TokenVaultOneB, true, false))        // 7
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountTwoA, true, false)) // 8
	metas.Append(solana.NewAccountMeta(accounts.TokenVaultTwoA, true, false))        // 9
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountTwoB, true, false)) // 10
	metas.Append(solana.NewAccountMeta(accounts.TokenVaultTwoB, true, false))        // 11
	metas.Append(solana.NewAccountMeta(accounts.TickArraysOne[0], true, false))      // 12
	metas.Append(solana.NewAccountMeta(accounts.TickArraysOne[1], true, false))      // 13
	metas.Append(solana.NewAccountMeta(accounts.TickArraysOne[2], true, false))      // 14
	metas.Append(solana.NewAccountMeta(accounts.TickArraysTwo[0], true, false))      // 15
	metas.Append(solana.NewAccountMeta(accounts.TickArraysTwo[1], true, false))      // 16
	metas.Append(solana.NewAccountMeta(accounts.TickArraysTwo[2], true, false))      // 17
	metas.Append(solana.NewAccountMeta(accounts.OracleOne, true, false))             // 18
	metas.Append(solana.NewAccountMeta(accounts.OracleTwo, true, false))             // 19

	return solana.NewInstruction(NEMOSWAP_PROGRAM_ID, metas, buf.Bytes()), nil
}

// TwoHopFeeDiscountAccounts extends the two-hop account set with the
// burn-side accounts. One discount token covers both hops; each pool keeps
// its own discount-info account.
type TwoHopFeeDiscountAccounts struct {
	TwoHopSwapAccounts
	DiscountToken             solana.PublicKey
	TokenOwnerAccountDiscount solana.PublicKey
	WhirlpoolDiscountInfoOne  solana.PublicKey
	WhirlpoolDiscountInfoTwo  solana.PublicKey
}

// NewTwoHopSwapWithFeeDiscountInstruction builds the discounted two-hop
// variant.
func NewTwoHopSwapWithFeeDiscountInstruction(quoteOne, quoteTwo *SwapQuote, otherAmountThreshold math.Int, accounts TwoHopFeeDiscountAccounts) (solana.Instruction, error) {
	base, err := NewTwoHopSwapInstruction(quoteOne, quoteTwo, otherAmountThreshold, accounts.TwoHopSwapAccounts)
	if err != nil {
		return nil, err
	}
	data, err := base.Data()
	if err != nil {
		return nil, err
	}
	data = append(append(make([]byte, 0, len(data)), TwoHopSwapWithFeeDiscountDiscriminator...), data[8:]...)

	metas := solana.AccountMetaSlice(base.Accounts())
	metas.Append(solana.NewAccountMeta(accounts.DiscountToken, true, false))             // 20: discount_token mint (writable, burned)
	metas.Append(solana.NewAccountMeta(accounts.TokenOwnerAccountDiscount, true, false)) // 21: trader discount token account (writable)
	metas.Append(solana.NewAccountMeta(accounts.WhirlpoolDiscountInfoOne, false, false)) // 22: whirlpool_discount_info_one
	metas.Append(solana.NewAccountMeta(accounts.WhirlpoolDiscountInfoTwo, false, false)) // 23: whirlpool_discount_info_two

	return solana.NewInstruction(NEMOSWAP_PROGRAM_ID, metas, data), nil
}

// BuildSwapInstructions builds an exact-input swap instruction for the
// router interface: amount and minimum output by mint address.
func (p *Whirlpool) BuildSwapInstructions(
	ctx context.Context,
	client *rpc.Client,
	user solana.PublicKey,
	inputMint string,
	inputAmount math.Int,
	minOut math.Int,
) ([]solana.Instruction, error) {
	aToB, err := p.directionForInput(inputMint)
	if err != nil {
		return nil, err
	}

	tickArrays, _, err := DeriveTickArrayPDAs(p.Address, p.TickCurrentIndex, p.TickSpacing, aToB)
	if err != nil {
		return nil, err
	}
	oracle, err := DeriveOraclePDA(p.Address)
	if err != nil {
		return nil, err
	}
	ownerAccountA, _, err := solana.FindAssociatedTokenAddress(user, p.TokenMintA)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token account A: %w", err)
	}
	ownerAccountB, _, err := solana.FindAssociatedTokenAddress(user, p.TokenMintB)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token account B: %w", err)
	}

	limit := MIN_SQRT_PRICE_X64
	if !aToB {
		limit = MAX_SQRT_PRICE_X64
	}
	quote := &SwapQuote{
		Amount:                 inputAmount,
		AmountSpecifiedIsInput: true,
		AToB:                   aToB,
		SqrtPriceLimit:         limit,
		OtherAmountThreshold:   minOut,
	}

	instruction, err := NewSwapInstruction(quote, SwapAccounts{
		TokenAuthority:     user,
		Whirlpool:          p.Address,
		TokenOwnerAccountA: ownerAccountA,
		TokenVaultA:        p.TokenVaultA,
		TokenOwnerAccountB: ownerAccountB,
		TokenVaultB:        p.TokenVaultB,
		TickArrays:         tickArrays,
		Oracle:             oracle,
	})
	if err != nil {
		return nil, err
	}
	return []solana.Instruction{instruction}, nil
}
