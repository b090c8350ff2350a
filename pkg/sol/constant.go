package sol

import "github.com/gagliardetto/solana-go"

var (
	// WrappedNative is the wrapped RENEC mint (SPL-compatible chain, same
	// well-known address as upstream wrapped native).
	WrappedNative = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	NativeProgram = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	TokenAccountSize = uint64(165)
)
