package psbtbuilder

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// FinalizePSBT implements finalize_psbt: it consumes a fully signed PSBT
// and emits raw transaction bytes, the txid, and the final vsize. It
// refuses to finalize any input missing its required witness fields,
// mirroring chantools' zombierecovery_signoffer.go finalize/extract
// sequence (psbt.MaybeFinalizeAll then psbt.Extract).
func FinalizePSBT(signedPsbtBase64 string) (*vault.FinalizedTx, error) {
	packet, err := psbt.NewFromRawBytes(
		bytes.NewReader([]byte(signedPsbtBase64)), true,
	)
	if err != nil {
		return nil, vaulterr.SerializationError(
			"could not decode signed PSBT", err)
	}

	for i, pIn := range packet.Inputs {
		if pIn.WitnessUtxo == nil {
			return nil, vaulterr.PsbtBuildFailed(fmt.Sprintf(
				"input %d is missing its witness UTXO", i),
				nil)
		}
		if len(pIn.FinalScriptWitness) == 0 &&
			len(pIn.TaprootKeySpendSig) == 0 &&
			len(pIn.TaprootScriptSpendSig) == 0 {

			return nil, vaulterr.PsbtBuildFailed(fmt.Sprintf(
				"input %d has no signature or finalized "+
					"witness", i), nil)
		}
	}

	if err := psbt.MaybeFinalizeAll(packet); err != nil {
		return nil, vaulterr.PsbtBuildFailed(
			"could not finalize PSBT", err)
	}

	finalTx, err := psbt.Extract(packet)
	if err != nil {
		return nil, vaulterr.PsbtBuildFailed(
			"could not extract final transaction", err)
	}

	var buf bytes.Buffer
	if err := finalTx.Serialize(&buf); err != nil {
		return nil, vaulterr.SerializationError(
			"could not serialize final transaction", err)
	}

	return &vault.FinalizedTx{
		TxHex: hex.EncodeToString(buf.Bytes()),
		Txid:  finalTx.TxHash().String(),
		Vsize: txVsize(finalTx),
	}, nil
}

// txVsize computes the standard virtual size: (weight + 3) / 4, where
// weight is 3*base size + total size (BIP141).
func txVsize(tx *wire.MsgTx) int64 {
	baseSize := tx.SerializeSizeStripped()
	totalSize := tx.SerializeSize()
	weight := baseSize*3 + totalSize
	return int64(weight+3) / 4
}
