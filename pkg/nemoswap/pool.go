package nemoswap

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"lukechampine.com/uint128"

	"github.com/renec-chain/nemo-swap-sub000/pkg"
)

// RewardInfo is one of the three reward emission slots of a pool.
type RewardInfo struct {
	Mint                  solana.PublicKey
	Vault                 solana.PublicKey
	Authority             solana.PublicKey
	EmissionsPerSecondX64 uint128.Uint128
	GrowthGlobalX64       uint128.Uint128
}

// Whirlpool is a decoded pool account. The quote engine treats it as an
// immutable snapshot; nothing here is mutated while quoting.
type Whirlpool struct {
	Address solana.PublicKey

	WhirlpoolsConfig solana.PublicKey
	WhirlpoolBump    uint8
	TickSpacing      uint16
	TickSpacingSeed  [2]byte
	FeeRate          uint16
	ProtocolFeeRate  uint16
	Liquidity        uint128.Uint128
	SqrtPrice        uint128.Uint128
	TickCurrentIndex int32
	ProtocolFeeOwedA uint64
	ProtocolFeeOwedB uint64
	TokenMintA       solana.PublicKey
	TokenVaultA      solana.PublicKey
	FeeGrowthGlobalA uint128.Uint128
	TokenMintB       solana.PublicKey
	TokenVaultB      solana.PublicKey
	FeeGrowthGlobalB uint128.Uint128

	RewardLastUpdatedTimestamp uint64
	RewardInfos                [3]RewardInfo

	// Enabled is not part of the account image; discovery clears it when a
	// pool fails health screening so quoting refuses it.
	Enabled bool

	tickArrays []TickArray
}

// Span returns the serialized account size.
func (p *Whirlpool) Span() uint64 { return WHIRLPOOL_SIZE }

// Offset returns the byte offset of a field for RPC memcmp filters.
func (p *Whirlpool) Offset(field string) uint64 {
	switch field {
	case "TickSpacing":
		return 41
	case "FeeRate":
		return 45
	case "Liquidity":
		return 49
	case "SqrtPrice":
		return 65
	case "TickCurrentIndex":
		return 81
	case "TokenMintA":
		return 101
	case "TokenVaultA":
		return 133
	case "TokenMintB":
		return 181
	case "TokenVaultB":
		return 213
	default:
		return 0
	}
}

// Decode parses a pool account image.
func (p *Whirlpool) Decode(data []byte) error {
	if len(data) < WHIRLPOOL_SIZE {
		return fmt.Errorf("%w: pool account too short: %d", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:8], WhirlpoolDiscriminator) {
		return fmt.Errorf("%w: pool discriminator mismatch", ErrInvalidAccountData)
	}

	p.WhirlpoolsConfig = solana.PublicKeyFromBytes(data[8:40])
	p.WhirlpoolBump = data[40]
	p.TickSpacing = binary.LittleEndian.Uint16(data[41:])
	copy(p.TickSpacingSeed[:], data[43:45])
	p.FeeRate = binary.LittleEndian.Uint16(data[45:])
	p.ProtocolFeeRate = binary.LittleEndian.Uint16(data[47:])
	p.Liquidity = parseUint128LE(data[49:])
	p.SqrtPrice = parseUint128LE(data[65:])
	p.TickCurrentIndex = int32(binary.LittleEndian.Uint32(data[81:]))
	p.ProtocolFeeOwedA = binary.LittleEndian.Uint64(data[85:])
	p.ProtocolFeeOwedB = binary.LittleEndian.Uint64(data[93:])
	p.TokenMintA = solana.PublicKeyFromBytes(data[101:133])
	p.TokenVaultA = solana.PublicKeyFromBytes(data[133:165])
	p.FeeGrowthGlobalA = parseUint128LE(data[165:])
	p.TokenMintB = solana.PublicKeyFromBytes(data[181:213])
	p.TokenVaultB = solana.PublicKeyFromBytes(data[213:245])
	p.FeeGrowthGlobalB = parseUint128LE(data[245:])
	p.RewardLastUpdatedTimestamp = binary.LittleEndian.Uint64(data[261:])

	pos := 269
	for i := 0; i < 3; i++ {
		p.RewardInfos[i].Mint = solana.PublicKeyFromBytes(data[pos : pos+32])
		p.RewardInfos[i].Vault = solana.PublicKeyFromBytes(data[pos+32 : pos+64])
		p.RewardInfos[i].Authority = solana.PublicKeyFromBytes(data[pos+64 : pos+96])
		p.RewardInfos[i].EmissionsPerSecondX64 = parseUint128LE(data[pos+96:])
		p.RewardInfos[i].GrowthGlobalX64 = parseUint128LE(data[pos+112:])
		pos += 128
	}

	p.Enabled = true
	return nil
}

// ProtocolName identifies the protocol for routing.
func (p *Whirlpool) ProtocolName() pkg.ProtocolName { return pkg.ProtocolNameNemoswap }

// ProtocolType is the contract-side protocol enum value.
func (p *Whirlpool) ProtocolType() pkg.ProtocolType { return pkg.ProtocolTypeNemoswap }

// GetID returns the pool account address.
func (p *Whirlpool) GetID() string { return p.Address.String() }

// GetProgramID returns the owning program.
func (p *Whirlpool) GetProgramID() solana.PublicKey { return NEMOSWAP_PROGRAM_ID }

// GetTokens returns the pool's canonical mint pair.
func (p *Whirlpool) GetTokens() (string, string) {
	return p.TokenMintA.String(), p.TokenMintB.String()
}

// SqrtPriceInt returns the current sqrt price as math.Int.
func (p *Whirlpool) SqrtPriceInt() math.Int {
	return math.NewIntFromBigInt(p.SqrtPrice.Big())
}

// LiquidityInt returns the current in-range liquidity as math.Int.
func (p *Whirlpool) LiquidityInt() math.Int {
	return math.NewIntFromBigInt(p.Liquidity.Big())
}

// Validate reports whether the snapshot is quotable.
func (p *Whirlpool) Validate() error {
	if !p.Enabled {
		return fmt.Errorf("%w: %s", ErrPoolDisabled, p.Address)
	}
	if p.TickSpacing == 0 {
		return fmt.Errorf("%w: zero tick spacing", ErrInvalidAccountData)
	}
	sqrtPrice := p.SqrtPriceInt()
	if sqrtPrice.LT(MIN_SQRT_PRICE_X64) || sqrtPrice.GT(MAX_SQRT_PRICE_X64) {
		return fmt.Errorf("%w: pool sqrt price %s", ErrOutOfBounds, sqrtPrice)
	}
	if p.TickCurrentIndex < MIN_TICK || p.TickCurrentIndex > MAX_TICK {
		return fmt.Errorf("%w: pool tick %d", ErrOutOfBounds, p.TickCurrentIndex)
	}
	return nil
}

// SetTickArrays installs a pre-fetched, traversal-ordered tick array window
// for subsequent quoting.
func (p *Whirlpool) SetTickArrays(arrays []TickArray) {
	p.tickArrays = arrays
}

// TickArrays returns the currently installed window.
func (p *Whirlpool) TickArrays() []TickArray { return p.tickArrays }

// FetchTickArrays loads the three-array window for a trade direction and
// installs it. This is the only networked pool method the quoting flow
// touches; the engine itself never fetches.
func (p *Whirlpool) FetchTickArrays(ctx context.Context, client *rpc.Client, aToB bool) error {
	pdas, starts, err := DeriveTickArrayPDAs(p.Address, p.TickCurrentIndex, p.TickSpacing, aToB)
	if err != nil {
		return err
	}

	res, err := client.GetMultipleAccountsWithOpts(ctx, pdas[:], &rpc.GetMultipleAccountsOpts{
		Commitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch tick arrays: %w", err)
	}

	arrays := make([]TickArray, 0, 3)
	for i, acct := range res.Value {
		if acct == nil {
			// A truncated window is usable as long as it is contiguous
			// from the front; the engine errors if a swap walks past it.
			break
		}
		var ta TickArray
		if err := ta.Decode(acct.Data.GetBinary()); err != nil {
			return fmt.Errorf("tick array %s: %w", pdas[i], err)
		}
		if ta.StartTickIndex != starts[i] {
			return fmt.Errorf("%w: tick array %s starts at %d, expected %d",
				ErrInvalidAccountData, pdas[i], ta.StartTickIndex, starts[i])
		}
		ta.Address = pdas[i]
		arrays = append(arrays, ta)
	}
	if len(arrays) == 0 {
		return fmt.Errorf("%w: no tick arrays on chain for pool %s", ErrMissingTickArray, p.Address)
	}

	p.tickArrays = arrays
	return nil
}
