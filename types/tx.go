package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Tx is a signed-by-host transaction: the host authenticates Sender before
// the transaction reaches the application.
type Tx struct {
	Sender string `json:"sender"`
	Msg    Msg    `json:"msg"`
}

// Msg is the set of messages the application executes.
type Msg struct {
	Submit *SubmitMsg `json:"submit_order,omitempty"`
}

// TxHash is the sha256 of the encoded transaction.
type TxHash [sha256.Size]byte

func (h TxHash) String() string { return fmt.Sprintf("%X", h[:]) }

// NewSubmitTx builds a transaction submitting req on behalf of sender.
func NewSubmitTx(sender string, req OrderRequest) Tx {
	return Tx{Sender: sender, Msg: Msg{Submit: NewSubmitMsg(req)}}
}

// DecodeTx decodes a JSON transaction. Unknown fields are rejected.
func DecodeTx(bz []byte) (Tx, error) {
	var tx Tx
	dec := json.NewDecoder(bytes.NewReader(bz))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tx); err != nil {
		return Tx{}, fmt.Errorf("%w: decoding tx: %v", ErrInvalidRequest, err)
	}
	return tx, nil
}

// Encode returns the canonical JSON encoding of the transaction.
func (tx Tx) Encode() ([]byte, error) {
	return json.Marshal(tx)
}

// ValidateBasic performs stateless checks on the transaction.
func (tx Tx) ValidateBasic() error {
	if tx.Sender == "" {
		return fmt.Errorf("%w: empty sender", ErrInvalidRequest)
	}
	if tx.Msg.Submit == nil {
		return fmt.Errorf("%w: no message", ErrInvalidRequest)
	}
	return tx.Msg.Submit.ValidateBasic()
}

// HashTx returns the hash of the raw transaction bytes.
func HashTx(bz []byte) TxHash { return sha256.Sum256(bz) }
