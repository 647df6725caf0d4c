package fee

import "errors"

// ErrOverflow indicates the fee computation would exceed int64 range.
var ErrOverflow = errors.New("fee computation overflow")

const bpsDenominator = 10_000

// Split divides a gross amount into the net payable to the recipient and the
// platform fee, with feeAmount = floor(amount * rateBps / 10000). The two
// parts always sum back to the gross amount exactly.
func Split(amount, rateBps int64) (net, feeAmount int64, err error) {
	if amount < 0 || rateBps < 0 || rateBps > bpsDenominator {
		return 0, 0, ErrOverflow
	}
	if amount != 0 && rateBps != 0 && amount > (1<<63-1)/rateBps {
		return 0, 0, ErrOverflow
	}
	feeAmount = amount * rateBps / bpsDenominator
	return amount - feeAmount, feeAmount, nil
}
