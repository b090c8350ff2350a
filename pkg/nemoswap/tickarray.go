package nemoswap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// Tick is one slot of a tick array account.
type Tick struct {
	Initialized          bool
	LiquidityNet         math.Int // signed 128-bit
	LiquidityGross       uint128.Uint128
	FeeGrowthOutsideA    uint128.Uint128
	FeeGrowthOutsideB    uint128.Uint128
	RewardGrowthsOutside [3]uint128.Uint128
}

// TickArray covers TICK_ARRAY_SIZE consecutive initializable ticks starting
// at StartTickIndex, which is always aligned to tickSpacing*TICK_ARRAY_SIZE.
type TickArray struct {
	Address        solana.PublicKey
	StartTickIndex int32
	Ticks          [TICK_ARRAY_SIZE]Tick
	Whirlpool      solana.PublicKey
}

// Decode parses a tick array account image.
func (t *TickArray) Decode(data []byte) error {
	if len(data) < TICK_ARRAY_ACCOUNT {
		return fmt.Errorf("%w: tick array account too short: %d", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:8], TickArrayDiscriminator) {
		return fmt.Errorf("%w: tick array discriminator mismatch", ErrInvalidAccountData)
	}

	t.StartTickIndex = int32(binary.LittleEndian.Uint32(data[8:]))

	pos := 12
	for i := 0; i < TICK_ARRAY_SIZE; i++ {
		t.Ticks[i].Initialized = data[pos] != 0
		pos++

		t.Ticks[i].LiquidityNet = parseInt128LE(data[pos:])
		pos += 16

		t.Ticks[i].LiquidityGross = parseUint128LE(data[pos:])
		pos += 16

		t.Ticks[i].FeeGrowthOutsideA = parseUint128LE(data[pos:])
		pos += 16

		t.Ticks[i].FeeGrowthOutsideB = parseUint128LE(data[pos:])
		pos += 16

		for j := 0; j < 3; j++ {
			t.Ticks[i].RewardGrowthsOutside[j] = parseUint128LE(data[pos:])
			pos += 16
		}
	}

	t.Whirlpool = solana.PublicKeyFromBytes(data[pos : pos+32])
	return nil
}

// span returns the number of tick indices covered by one array.
func tickArraySpan(tickSpacing uint16) int32 {
	return int32(tickSpacing) * TICK_ARRAY_SIZE
}

// TickArrayStartIndex aligns a tick index down to its array's start tick,
// handling negative indices with floor semantics.
func TickArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	span := tickArraySpan(tickSpacing)
	d := tick / span
	if tick < 0 && tick%span != 0 {
		d--
	}
	return d * span
}

// TickOffset returns the slot a tick occupies inside its array, or an error
// when the tick is not initializable at this spacing.
func TickOffset(tick int32, startTickIndex int32, tickSpacing uint16) (int, error) {
	delta := tick - startTickIndex
	if delta < 0 || delta >= tickArraySpan(tickSpacing) {
		return 0, fmt.Errorf("%w: tick %d not in array starting at %d", ErrOutOfBounds, tick, startTickIndex)
	}
	if delta%int32(tickSpacing) != 0 {
		return 0, fmt.Errorf("%w: tick %d not a multiple of spacing %d", ErrOutOfBounds, tick, tickSpacing)
	}
	return int(delta / int32(tickSpacing)), nil
}

// TickArraySequence walks caller-supplied tick arrays in one direction.
// It never fetches; running past the supplied window is an error surfaced
// to the quote caller.
type TickArraySequence struct {
	arrays      []TickArray
	tickSpacing uint16
	aToB        bool
}

// NewTickArraySequence validates that the window covers the traversal
// origin and is contiguous in the traversal direction.
func NewTickArraySequence(arrays []TickArray, tickSpacing uint16, currentTick int32, aToB bool) (*TickArraySequence, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("%w: no tick arrays supplied", ErrInsufficientTickArrayData)
	}
	span := tickArraySpan(tickSpacing)

	origin := currentTick
	if !aToB {
		// The on-chain window for an up-swap is derived from the shifted
		// tick, so the first array is allowed to start one array later.
		origin = currentTick + int32(tickSpacing)
	}
	first := arrays[0].StartTickIndex
	if origin < first || origin >= first+span {
		return nil, fmt.Errorf("%w: first array %d does not cover tick %d",
			ErrMissingTickArray, first, currentTick)
	}

	for i := 1; i < len(arrays); i++ {
		want := arrays[i-1].StartTickIndex - span
		if !aToB {
			want = arrays[i-1].StartTickIndex + span
		}
		if arrays[i].StartTickIndex != want {
			return nil, fmt.Errorf("%w: array %d starts at %d, expected %d",
				ErrMissingTickArray, i, arrays[i].StartTickIndex, want)
		}
	}

	return &TickArraySequence{arrays: arrays, tickSpacing: tickSpacing, aToB: aToB}, nil
}

// NextInitializedTick finds the nearest initialized tick from the given
// position: at or below it when moving down, strictly above it when moving
// up. When the window holds no further initialized tick it returns the
// window's terminal boundary tick with found=false.
func (s *TickArraySequence) NextInitializedTick(tick int32) (int32, *Tick, bool) {
	spacing := int32(s.tickSpacing)
	span := tickArraySpan(s.tickSpacing)

	if s.aToB {
		for ai := range s.arrays {
			arr := &s.arrays[ai]
			if arr.StartTickIndex > tick {
				continue
			}
			offset := (tick - arr.StartTickIndex) / spacing
			if offset >= TICK_ARRAY_SIZE {
				offset = TICK_ARRAY_SIZE - 1
			}
			for i := offset; i >= 0; i-- {
				if arr.Ticks[i].Initialized {
					return arr.StartTickIndex + i*spacing, &arr.Ticks[i], true
				}
			}
		}
		boundary := s.arrays[len(s.arrays)-1].StartTickIndex
		if boundary < MIN_TICK {
			boundary = MIN_TICK
		}
		return boundary, nil, false
	}

	for ai := range s.arrays {
		arr := &s.arrays[ai]
		if arr.StartTickIndex+span <= tick+1 {
			continue
		}
		var offset int32
		if delta := tick + 1 - arr.StartTickIndex; delta > 0 {
			offset = (delta + spacing - 1) / spacing
		}
		for i := offset; i < TICK_ARRAY_SIZE; i++ {
			if arr.Ticks[i].Initialized {
				return arr.StartTickIndex + i*spacing, &arr.Ticks[i], true
			}
		}
	}
	boundary := s.arrays[len(s.arrays)-1].StartTickIndex + span
	if boundary > MAX_TICK {
		boundary = MAX_TICK
	}
	return boundary, nil, false
}

// DeriveTickArrayPDA derives the tick array account address for a pool and
// aligned start tick index.
func DeriveTickArrayPDA(whirlpool solana.PublicKey, startTickIndex int32) (solana.PublicKey, error) {
	seeds := [][]byte{
		[]byte(TICK_ARRAY_SEED),
		whirlpool.Bytes(),
		[]byte(strconv.FormatInt(int64(startTickIndex), 10)),
	}
	pda, _, err := solana.FindProgramAddress(seeds, NEMOSWAP_PROGRAM_ID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive tick array PDA: %w", err)
	}
	return pda, nil
}

// DeriveTickArrayPDAs derives the three-array window a swap instruction
// references, ordered along the traversal direction.
func DeriveTickArrayPDAs(whirlpool solana.PublicKey, currentTick int32, tickSpacing uint16, aToB bool) ([3]solana.PublicKey, [3]int32, error) {
	var pdas [3]solana.PublicKey
	var starts [3]int32

	shifted := currentTick
	if !aToB {
		shifted += int32(tickSpacing)
	}
	span := tickArraySpan(tickSpacing)
	start := TickArrayStartIndex(shifted, tickSpacing)

	for i := 0; i < 3; i++ {
		offset := span * int32(i)
		if aToB {
			offset = -offset
		}
		starts[i] = start + offset
		pda, err := DeriveTickArrayPDA(whirlpool, starts[i])
		if err != nil {
			return pdas, starts, err
		}
		pdas[i] = pda
	}
	return pdas, starts, nil
}

// DeriveOraclePDA derives the per-pool oracle account address.
func DeriveOraclePDA(whirlpool solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(ORACLE_SEED), whirlpool.Bytes()},
		NEMOSWAP_PROGRAM_ID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive oracle PDA: %w", err)
	}
	return pda, nil
}

func parseUint128LE(data []byte) uint128.Uint128 {
	lo := binary.LittleEndian.Uint64(data[:8])
	hi := binary.LittleEndian.Uint64(data[8:16])
	return uint128.New(lo, hi)
}

// parseInt128LE reads a little-endian two's-complement 128-bit integer.
func parseInt128LE(data []byte) math.Int {
	u := parseUint128LE(data)
	v := u.Big()
	if u.Hi&(1<<63) != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return math.NewIntFromBigInt(v)
}
