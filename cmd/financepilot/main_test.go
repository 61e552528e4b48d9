package main

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"financepilot/internal/config"
	"financepilot/internal/log"
)

func TestRunReturnsListenError(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer taken.Close()
	_, port, err := net.SplitHostPort(taken.Addr().String())
	require.NoError(t, err)

	cfg := &config.Config{
		LedgerFile:     filepath.Join(t.TempDir(), "ledger.csv"),
		LedgerMaxBytes: 1 << 20,
		ListLimit:      100,
		Port:           port,
	}

	require.Error(t, run(cfg, log.Discard()))
}
