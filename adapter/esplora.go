package adapter

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/taproot-vault/vaultcore/vault"
	"github.com/taproot-vault/vaultcore/vaulterr"
)

// EsploraAdapter is a BlockchainAdapter backed by an esplora-style REST API
// (mempool.space, Blockstream's own esplora deployments, or a self-hosted
// instance). It follows the fetchJSON-over-http.Get shape of
// btc/explorer_api.go's ExplorerAPI, trimmed to the three calls the vault
// core needs and classifying every failure into the transient/permanent
// split the recovery scanner's retry loop (C6) depends on.
type EsploraAdapter struct {
	BaseURL string
	Client  *http.Client
}

// NewEsploraAdapter returns an adapter against baseURL (no trailing slash,
// e.g. "https://blockstream.info/api") with a bounded request timeout.
func NewEsploraAdapter(baseURL string) *EsploraAdapter {
	return &EsploraAdapter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type esploraVout struct {
	ScriptPubkey string `json:"scriptpubkey"`
	Address      string `json:"scriptpubkey_address"`
	Value        int64  `json:"value"`
}

type esploraVin struct {
	Witness []string `json:"witness"`
}

type esploraStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight uint32 `json:"block_height"`
}

type esploraTx struct {
	Txid   string         `json:"txid"`
	Vin    []esploraVin   `json:"vin"`
	Vout   []esploraVout  `json:"vout"`
	Status *esploraStatus `json:"status"`
}

type esploraOutspend struct {
	Spent bool   `json:"spent"`
	Txid  string `json:"txid"`
	Vin   int    `json:"vin"`
}

type esploraUtxo struct {
	Txid   string         `json:"txid"`
	Vout   uint32         `json:"vout"`
	Value  int64          `json:"value"`
	Status *esploraStatus `json:"status"`
}

func (a *EsploraAdapter) GetUtxos(ctx context.Context, address string) (
	[]vault.Utxo, error) {

	var raw []esploraUtxo
	if err := a.fetchJSON(
		ctx, fmt.Sprintf("/address/%s/utxo", address), &raw,
	); err != nil {
		return nil, err
	}

	out := make([]vault.Utxo, 0, len(raw))
	for _, u := range raw {
		utxo := vault.Utxo{
			Txid:      u.Txid,
			Vout:      u.Vout,
			ValueSats: u.Value,
		}
		if u.Status != nil && u.Status.Confirmed {
			utxo.BlockHeight = u.Status.BlockHeight
			utxo.HasBlockHeight = true
		}
		out = append(out, utxo)
	}
	return out, nil
}

func (a *EsploraAdapter) GetTipHeight(ctx context.Context) (uint32, error) {
	body, err := a.fetchRaw(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}

	var height uint32
	if _, err := fmt.Sscanf(strings.TrimSpace(string(body)), "%d", &height); err != nil {
		return 0, vaulterr.AdapterPermanent(
			"could not parse tip height response", err)
	}
	return height, nil
}

// GetTxWitness looks up whether txid:vout has been spent and, if so,
// fetches the spending transaction's witness stack for that input.
func (a *EsploraAdapter) GetTxWitness(ctx context.Context, txid string,
	vout uint32) ([][]byte, bool, error) {

	var outspend esploraOutspend
	url := fmt.Sprintf("/tx/%s/outspend/%d", txid, vout)
	if err := a.fetchJSON(ctx, url, &outspend); err != nil {
		return nil, false, err
	}
	if !outspend.Spent {
		return nil, false, nil
	}

	var spendingTx esploraTx
	if err := a.fetchJSON(
		ctx, fmt.Sprintf("/tx/%s", outspend.Txid), &spendingTx,
	); err != nil {
		return nil, false, err
	}
	if outspend.Vin >= len(spendingTx.Vin) {
		return nil, false, vaulterr.AdapterPermanent(fmt.Sprintf(
			"spending tx %s has no input %d", outspend.Txid,
			outspend.Vin), nil)
	}

	witnessHex := spendingTx.Vin[outspend.Vin].Witness
	witness := make([][]byte, len(witnessHex))
	for i, item := range witnessHex {
		b, err := hex.DecodeString(item)
		if err != nil {
			return nil, false, vaulterr.AdapterPermanent(
				"could not decode witness item hex", err)
		}
		witness[i] = b
	}
	return witness, true, nil
}

// fetchRaw issues a GET against path and returns the response body,
// classifying failures into the adapter error taxonomy.
func (a *EsploraAdapter) fetchRaw(ctx context.Context, path string) (
	[]byte, error) {

	url := a.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, vaulterr.AdapterPermanent(fmt.Sprintf(
			"could not build request for %s", url), err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, vaulterr.AdapterTransient(fmt.Sprintf(
			"request to %s failed, server might be experiencing "+
				"temporary issues", url), err)
	}
	defer resp.Body.Close()

	body := new(bytes.Buffer)
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return nil, vaulterr.AdapterTransient(fmt.Sprintf(
			"could not read response body from %s", url), err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body.Bytes(), nil
	case resp.StatusCode >= 500:
		return nil, vaulterr.AdapterTransient(fmt.Sprintf(
			"%s returned %d", url, resp.StatusCode), nil)
	default:
		return nil, vaulterr.AdapterPermanent(fmt.Sprintf(
			"%s returned %d: %s", url, resp.StatusCode,
			body.String()), nil)
	}
}

func (a *EsploraAdapter) fetchJSON(ctx context.Context, path string,
	target interface{}) error {

	body, err := a.fetchRaw(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return vaulterr.AdapterPermanent(fmt.Sprintf(
			"could not decode JSON response from %s", path), err)
	}
	return nil
}
