package counting

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// SplitParamsLen is the exact byte length of an encoded fractional split:
// three 16-byte big-endian unsigned integers, in tally order
// {against, for, abstain}. Any other length is rejected.
const SplitParamsLen = 48

// Split is a decoded fractional vote: the portion of the caller's remaining
// entitlement assigned to each ballot category.
type Split struct {
	AgainstVotes sdkmath.Uint
	ForVotes     sdkmath.Uint
	AbstainVotes sdkmath.Uint
}

// Sum returns the total weight consumed by the split.
func (s Split) Sum() sdkmath.Uint {
	return s.AgainstVotes.Add(s.ForVotes).Add(s.AbstainVotes)
}

// EncodeSplit packs a split into the fixed wire encoding. Each component
// must fit 128 bits.
func EncodeSplit(split Split) ([]byte, error) {
	buf := make([]byte, SplitParamsLen)
	for i, v := range []sdkmath.Uint{split.AgainstVotes, split.ForVotes, split.AbstainVotes} {
		if v.GT(MaxWeight) {
			return nil, ErrWeightOverflow
		}
		v.BigInt().FillBytes(buf[i*16 : (i+1)*16])
	}
	return buf, nil
}

// DecodeSplit unpacks the fixed wire encoding. Payloads of any other length
// fail with ErrInvalidVoteData.
func DecodeSplit(params []byte) (Split, error) {
	if len(params) != SplitParamsLen {
		return Split{}, ErrInvalidVoteData
	}
	return Split{
		AgainstVotes: uintFromBigEndian(params[0:16]),
		ForVotes:     uintFromBigEndian(params[16:32]),
		AbstainVotes: uintFromBigEndian(params[32:48]),
	}, nil
}

func uintFromBigEndian(b []byte) sdkmath.Uint {
	return sdkmath.NewUintFromBigInt(new(big.Int).SetBytes(b))
}
