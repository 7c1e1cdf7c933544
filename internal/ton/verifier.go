// Package ton verifies booster payments made on the TON network.
package ton

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// NanotonPerTON is the smallest-unit scale of a TON amount.
const NanotonPerTON = 1_000_000_000

// BoosterPriceNanoton is the fixed price of the 30-minute booster,
// 0.5 TON.
const BoosterPriceNanoton int64 = NanotonPerTON / 2

// serialized bag-of-cells magic, the first four bytes of any BOC
var bocMagic = []byte{0xb5, 0xee, 0x9c, 0x72}

// VerifyRequest carries the client's claim about a completed transfer.
type VerifyRequest struct {
	BOC           string `json:"boc"`
	SenderAddress string `json:"senderAddress"`
	AmountNanoton int64  `json:"amountNanoton"`
}

// Result reports whether the transfer was accepted. A rejection is a
// normal outcome, not an error; errors mean the check itself failed.
type Result struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) (Result, error)
}

// StructuralVerifier accepts any transfer whose BOC is a well-formed
// serialized bag of cells and whose amount covers the booster price. It
// performs no on-chain lookup. Production deployments substitute a
// Verifier backed by a TON API node.
type StructuralVerifier struct{}

func (StructuralVerifier) Verify(_ context.Context, req VerifyRequest) (Result, error) {
	boc := strings.TrimSpace(req.BOC)
	if boc == "" {
		return Result{Reason: "missing transaction boc"}, nil
	}
	raw, err := base64.StdEncoding.DecodeString(boc)
	if err != nil {
		return Result{Reason: "boc is not valid base64"}, nil
	}
	if len(raw) < len(bocMagic) || !bytes.Equal(raw[:len(bocMagic)], bocMagic) {
		return Result{Reason: "boc is not a serialized bag of cells"}, nil
	}
	if req.AmountNanoton < BoosterPriceNanoton {
		return Result{Reason: fmt.Sprintf("amount %d below booster price %d", req.AmountNanoton, BoosterPriceNanoton)}, nil
	}
	return Result{Accepted: true}, nil
}

// TransferURL builds the ton:// deep link a wallet opens to pay for the
// booster. The CLI renders it as a QR code.
func TransferURL(recipient string, amountNanoton int64) string {
	return fmt.Sprintf("ton://transfer/%s?amount=%d", recipient, amountNanoton)
}
