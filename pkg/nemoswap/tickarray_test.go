package nemoswap

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTickArrayImage serializes a tick array account with the given
// initialized ticks (tick index -> liquidity net).
func buildTickArrayImage(t *testing.T, startTickIndex int32, tickSpacing uint16, whirlpool solana.PublicKey, initialized map[int32]int64) []byte {
	t.Helper()
	data := make([]byte, TICK_ARRAY_ACCOUNT)
	copy(data, TickArrayDiscriminator)
	binary.LittleEndian.PutUint32(data[8:], uint32(startTickIndex))

	for tick, net := range initialized {
		offset, err := TickOffset(tick, startTickIndex, tickSpacing)
		require.NoError(t, err)
		pos := 12 + offset*TickSize
		data[pos] = 1

		netBig := big.NewInt(net)
		if net < 0 {
			netBig.Add(netBig, new(big.Int).Lsh(big.NewInt(1), 128))
		}
		raw := netBig.Bytes()
		for i := 0; i < len(raw); i++ {
			data[pos+1+i] = raw[len(raw)-1-i]
		}
	}

	copy(data[12+TICK_ARRAY_SIZE*TickSize:], whirlpool.Bytes())
	return data
}

func testTickArray(t *testing.T, startTickIndex int32, tickSpacing uint16, initialized map[int32]int64) TickArray {
	t.Helper()
	var ta TickArray
	img := buildTickArrayImage(t, startTickIndex, tickSpacing, solana.PublicKey{}, initialized)
	require.NoError(t, ta.Decode(img))
	return ta
}

func TestTickArrayStartIndex(t *testing.T) {
	cases := []struct {
		tick    int32
		spacing uint16
		want    int32
	}{
		{0, 64, 0},
		{1, 64, 0},
		{5631, 64, 0},
		{5632, 64, 5632},
		{-1, 64, -5632},
		{-5632, 64, -5632},
		{-5633, 64, -11264},
		{443584, 64, 439296},
		{100, 1, 88},
		{-100, 1, -176},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TickArrayStartIndex(tc.tick, tc.spacing),
			"tick %d spacing %d", tc.tick, tc.spacing)
	}
}

func TestTickOffset(t *testing.T) {
	offset, err := TickOffset(-128, -5632, 64)
	require.NoError(t, err)
	assert.Equal(t, 86, offset)

	_, err = TickOffset(129, 0, 64)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = TickOffset(5632, 0, 64)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = TickOffset(-64, 0, 64)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestTickArrayDecode(t *testing.T) {
	pool := solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
	img := buildTickArrayImage(t, -5632, 64, pool, map[int32]int64{
		-128:  500_000_000,
		-5632: -123456789,
	})

	var ta TickArray
	require.NoError(t, ta.Decode(img))
	assert.Equal(t, int32(-5632), ta.StartTickIndex)
	assert.Equal(t, pool, ta.Whirlpool)

	assert.True(t, ta.Ticks[86].Initialized)
	assert.Equal(t, "500000000", ta.Ticks[86].LiquidityNet.String())
	assert.True(t, ta.Ticks[0].Initialized)
	assert.Equal(t, "-123456789", ta.Ticks[0].LiquidityNet.String())
	assert.False(t, ta.Ticks[1].Initialized)
}

func TestTickArrayDecodeRejectsBadInput(t *testing.T) {
	var ta TickArray
	require.ErrorIs(t, ta.Decode(make([]byte, 100)), ErrInvalidAccountData)

	img := make([]byte, TICK_ARRAY_ACCOUNT)
	copy(img, WhirlpoolDiscriminator)
	require.ErrorIs(t, ta.Decode(img), ErrInvalidAccountData)
}

func TestParseInt128LE(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = 0xff
	}
	assert.Equal(t, "-1", parseInt128LE(data).String())

	data = make([]byte, 16)
	data[0] = 42
	assert.Equal(t, "42", parseInt128LE(data).String())
}

func TestNewTickArraySequenceValidation(t *testing.T) {
	_, err := NewTickArraySequence(nil, 64, 0, true)
	require.ErrorIs(t, err, ErrInsufficientTickArrayData)

	// First array must cover the traversal origin.
	arrays := []TickArray{testTickArray(t, -5632, 64, nil)}
	_, err = NewTickArraySequence(arrays, 64, 0, true)
	require.ErrorIs(t, err, ErrMissingTickArray)

	// Down-traversal window with a gap.
	arrays = []TickArray{
		testTickArray(t, 0, 64, nil),
		testTickArray(t, -11264, 64, nil),
	}
	_, err = NewTickArraySequence(arrays, 64, 0, true)
	require.ErrorIs(t, err, ErrMissingTickArray)

	// Contiguous windows pass in both directions.
	arrays = []TickArray{
		testTickArray(t, 0, 64, nil),
		testTickArray(t, -5632, 64, nil),
	}
	_, err = NewTickArraySequence(arrays, 64, 0, true)
	require.NoError(t, err)

	arrays = []TickArray{
		testTickArray(t, 0, 64, nil),
		testTickArray(t, 5632, 64, nil),
	}
	_, err = NewTickArraySequence(arrays, 64, 0, false)
	require.NoError(t, err)
}

func TestNewTickArraySequenceShiftedOrigin(t *testing.T) {
	// Moving up from tick 5630 the shifted origin 5694 lands in the next
	// array, so a window starting at 5632 is valid.
	arrays := []TickArray{testTickArray(t, 5632, 64, nil)}
	_, err := NewTickArraySequence(arrays, 64, 5630, false)
	require.NoError(t, err)

	// Moving down the same window does not cover tick 5630.
	_, err = NewTickArraySequence(arrays, 64, 5630, true)
	require.ErrorIs(t, err, ErrMissingTickArray)
}

func TestNextInitializedTickDown(t *testing.T) {
	arrays := []TickArray{
		testTickArray(t, 0, 64, map[int32]int64{0: 100, 256: 200}),
		testTickArray(t, -5632, 64, map[int32]int64{-128: 300}),
	}
	seq, err := NewTickArraySequence(arrays, 64, 10, true)
	require.NoError(t, err)

	// Moving down includes the current tick.
	tick, data, found := seq.NextInitializedTick(10)
	require.True(t, found)
	assert.Equal(t, int32(0), tick)
	assert.Equal(t, "100", data.LiquidityNet.String())

	tick, data, found = seq.NextInitializedTick(-1)
	require.True(t, found)
	assert.Equal(t, int32(-128), tick)
	assert.Equal(t, "300", data.LiquidityNet.String())

	// Past the last initialized tick the terminal boundary is returned.
	tick, data, found = seq.NextInitializedTick(-129)
	assert.False(t, found)
	assert.Nil(t, data)
	assert.Equal(t, int32(-5632), tick)
}

func TestNextInitializedTickUp(t *testing.T) {
	arrays := []TickArray{
		testTickArray(t, 0, 64, map[int32]int64{0: 100, 256: 200}),
		testTickArray(t, 5632, 64, map[int32]int64{5696: 400}),
	}
	seq, err := NewTickArraySequence(arrays, 64, 0, false)
	require.NoError(t, err)

	// Moving up excludes the current tick.
	tick, data, found := seq.NextInitializedTick(0)
	require.True(t, found)
	assert.Equal(t, int32(256), tick)
	assert.Equal(t, "200", data.LiquidityNet.String())

	tick, _, found = seq.NextInitializedTick(256)
	require.True(t, found)
	assert.Equal(t, int32(5696), tick)

	tick, data, found = seq.NextInitializedTick(5696)
	assert.False(t, found)
	assert.Nil(t, data)
	assert.Equal(t, int32(11264), tick)
}

func TestNextInitializedTickBoundaryClamp(t *testing.T) {
	// The terminal boundary never leaves the tick range.
	arrays := []TickArray{testTickArray(t, 439296, 64, nil)}
	seq, err := NewTickArraySequence(arrays, 64, 443520, false)
	require.NoError(t, err)
	tick, _, found := seq.NextInitializedTick(443520)
	assert.False(t, found)
	assert.Equal(t, int32(MAX_TICK), tick)

	arrays = []TickArray{testTickArray(t, -444928, 64, nil)}
	seq, err = NewTickArraySequence(arrays, 64, -443600, true)
	require.NoError(t, err)
	tick, _, found = seq.NextInitializedTick(-443600)
	assert.False(t, found)
	assert.Equal(t, int32(MIN_TICK), tick)
}

func TestDeriveTickArrayPDAs(t *testing.T) {
	pool := solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")

	pdas, starts, err := DeriveTickArrayPDAs(pool, 0, 64, true)
	require.NoError(t, err)
	assert.Equal(t, [3]int32{0, -5632, -11264}, starts)

	again, _, err := DeriveTickArrayPDAs(pool, 0, 64, true)
	require.NoError(t, err)
	assert.Equal(t, pdas, again, "PDA derivation must be deterministic")

	_, starts, err = DeriveTickArrayPDAs(pool, 0, 64, false)
	require.NoError(t, err)
	assert.Equal(t, [3]int32{0, 5632, 11264}, starts)

	_, starts, err = DeriveTickArrayPDAs(pool, -100, 64, true)
	require.NoError(t, err)
	assert.Equal(t, [3]int32{-5632, -11264, -16896}, starts)

	// The up-window shifts by one spacing, which can move the first array.
	_, starts, err = DeriveTickArrayPDAs(pool, 5630, 64, false)
	require.NoError(t, err)
	assert.Equal(t, [3]int32{5632, 11264, 16896}, starts)
}

func TestDeriveOraclePDA(t *testing.T) {
	pool := solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")
	oracle, err := DeriveOraclePDA(pool)
	require.NoError(t, err)
	assert.False(t, oracle.IsZero())

	again, err := DeriveOraclePDA(pool)
	require.NoError(t, err)
	assert.Equal(t, oracle, again)
}
