package pkg

import (
	"context"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ProtocolName represents the string name of an AMM protocol
type ProtocolName string

const (
	ProtocolNameNemoswap ProtocolName = "nemoswap"
)

// ProtocolType represents the numeric type of an AMM protocol (matches contract enum)
type ProtocolType uint8

const (
	ProtocolTypeNemoswap ProtocolType = iota
)

type Pool interface {
	ProtocolName() ProtocolName
	ProtocolType() ProtocolType
	GetProgramID() solana.PublicKey
	GetID() string
	GetTokens() (baseMint, quoteMint string)
	Quote(ctx context.Context, solClient *rpc.Client, inputMint string, inputAmount math.Int) (math.Int, error)
	BuildSwapInstructions(
		ctx context.Context,
		solClient *rpc.Client,
		user solana.PublicKey,
		inputMint string,
		inputAmount math.Int,
		minOut math.Int,
	) ([]solana.Instruction, error)
}

type Protocol interface {
	FetchPoolsByPair(ctx context.Context, baseMint, quoteMint string) ([]Pool, error)
	FetchPoolByID(ctx context.Context, poolID string) (Pool, error)
}
