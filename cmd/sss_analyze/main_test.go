package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/packetdb"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"go.bug.st/serial"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	cmd.AddCommand(synthCmd())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseLine(t *testing.T) {
	cfg, err := parseLine(1200, "7O1.5")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	want := serialcfg.Config{BaudRate: 1200, DataBits: 7, Parity: serial.OddParity, StopBits: serial.OnePointFiveStopBits}
	if cfg != want {
		t.Fatalf("got %+v", cfg)
	}
	for _, bad := range []string{"", "8N", "9N1", "8Q1", "8N3", "xN1"} {
		if _, err := parseLine(9600, bad); err == nil {
			t.Errorf("parseLine(%q) should fail", bad)
		}
	}
}

func TestUsageWithoutCaptures(t *testing.T) {
	out, err := execute(t, "only-one.bin")
	if err != nil {
		t.Fatalf("usage should not be an error: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("no usage printed: %q", out)
	}
}

func TestSynthThenAnalyze(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "ctlr.bin")
	b := filepath.Join(dir, "dut.bin")
	archive := filepath.Join(dir, "packets.db")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)

	// PARAMS 19200 8N1: 19200000 then width 4, stop 1, parity 3, one nibble per byte
	params := "0004" + "000102040f080000" + "0000000000040103"
	if _, err := execute(t, "synth", a, b,
		"--a", "0000", "--b", "0100",
		"--a", params, "--b", "01"+params[2:],
		"--a", "0002aa", "--b", "0102aa",
	); err != nil {
		t.Fatalf("synth: %v", err)
	}

	out, err := execute(t, a, b, "--archive", archive)
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Opening " + a + " and " + b,
		"CMD NOP",
		"RSP NOP",
		"CMD PARAMS 19200.000 baud, 8N1",
		"RSP PARAMS 19200.000 baud, 8N1",
		"CMD ECHO +1",
		"RSP ECHO +1",
		"End of capture",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}

	db, err := packetdb.Open(archive)
	if err != nil {
		t.Fatalf("Open archive: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT packet_count FROM runs").Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 6 {
		t.Fatalf("archived %d packets", count)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	if _, err := execute(t, filepath.Join(dir, "a.bin"), filepath.Join(dir, "b.bin")); err == nil {
		t.Fatalf("expected an error for missing captures")
	}
}
