package main

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"regexp"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
	"github.com/taproot-vault/vaultcore/config"
	"github.com/taproot-vault/vaultcore/keys"
)

var datePattern = regexp.MustCompile(
	"\\d{4}-\\d{2}-\\d{2} \\d{2}:\\d{2}:\\d{2}\\.\\d{3} ",
)

type harness struct {
	t         *testing.T
	logBuffer *bytes.Buffer
	logger    btclog.Logger
	tempDir   string
}

func newHarness(t *testing.T) *harness {
	buf := &bytes.Buffer{}
	logBackend := btclog.NewBackend(buf)
	tempDir, err := os.MkdirTemp("", "vaultcli")
	require.NoError(t, err)

	h := &harness{
		t:         t,
		logBuffer: buf,
		logger:    logBackend.Logger("VLT"),
		tempDir:   tempDir,
	}

	h.logger.SetLevel(btclog.LevelTrace)
	log = h.logger

	os.Clearenv()
	network = keys.Mainnet
	policy = config.DefaultPolicy()

	return h
}

func (h *harness) getLog() string {
	return h.logBuffer.String()
}

func (h *harness) clearLog() {
	h.logBuffer.Reset()
}

func (h *harness) assertLogContains(format string, args ...interface{}) {
	h.t.Helper()

	require.Contains(h.t, h.logBuffer.String(), fmt.Sprintf(format, args...))
}

func (h *harness) writeJSONFile(name, content string) string {
	h.t.Helper()

	p := path.Join(h.tempDir, name)
	require.NoError(h.t, os.WriteFile(p, []byte(content), 0600))
	return p
}
