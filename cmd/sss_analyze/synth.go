package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/capture"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/framing"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/packet"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"github.com/spf13/cobra"
)

// Idle time between packets, in bit periods
const synthGap = 20

func synthCmd() *cobra.Command {
	var (
		baud    float64
		line    string
		framesA []string
		framesB []string
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "synth out1 out2",
		Short: "Write a synthetic pair of captures",
		Long: `Renders a conversation into two Saleae binary digital captures.

Packets are given as hex, direction and type bytes first. They are sent
alternately, the first --a packet, then the first --b packet, and so on.
A CRC trailer is appended unless --raw is set. A valid PARAMS response
switches both directions to the announced configuration, as a real
device would.

Example:
  sss_analyze synth ctlr.bin dut.bin --a 0000 --b 0100 --a 0001 --b 010170696300`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := parseLine(baud, line)
			if err != nil {
				return err
			}
			a, err := decodeFrames(framesA, raw)
			if err != nil {
				return fmt.Errorf("--a: %w", err)
			}
			b, err := decodeFrames(framesB, raw)
			if err != nil {
				return fmt.Errorf("--b: %w", err)
			}

			trace0, trace1 := renderConversation(cfg, a, b)
			if err := capture.Save(args[0], trace0); err != nil {
				return err
			}
			if err := capture.Save(args[1], trace1); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d and %d transitions, %.6f s\n",
				trace0.Len(), trace1.Len(), trace0.EndTime-trace0.BeginTime)
			return nil
		},
	}

	cmd.Flags().Float64Var(&baud, "baud", 9600, "Initial baud rate")
	cmd.Flags().StringVar(&line, "line", "8N1", "Initial data bits, parity and stop bits")
	cmd.Flags().StringArrayVar(&framesA, "a", nil, "Packet sent on the first capture (repeatable)")
	cmd.Flags().StringArrayVar(&framesB, "b", nil, "Packet sent on the second capture (repeatable)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Send packets as given, without a CRC trailer")

	return cmd
}

// parseLine reads a "8N1" style line format.
func parseLine(baud float64, line string) (serialcfg.Config, error) {
	if len(line) < 3 {
		return serialcfg.Config{}, fmt.Errorf("bad line format %q", line)
	}
	bits, err := strconv.Atoi(line[:1])
	if err != nil {
		return serialcfg.Config{}, fmt.Errorf("bad line format %q: %w", line, err)
	}
	parity, err := serialcfg.ParseParity(line[1:2])
	if err != nil {
		return serialcfg.Config{}, err
	}
	count, err := strconv.ParseFloat(line[2:], 64)
	if err != nil {
		return serialcfg.Config{}, fmt.Errorf("bad line format %q: %w", line, err)
	}
	stop, err := serialcfg.ParseStopBits(count)
	if err != nil {
		return serialcfg.Config{}, err
	}

	cfg := serialcfg.Config{BaudRate: baud, DataBits: bits, Parity: parity, StopBits: stop}
	return cfg, cfg.Validate()
}

func decodeFrames(in []string, raw bool) ([][]byte, error) {
	out := make([][]byte, 0, len(in))
	for _, s := range in {
		b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
		if err != nil {
			return nil, err
		}
		if !raw {
			b = packet.AppendCRC(b)
		}
		out = append(out, b)
	}
	return out, nil
}

// renderConversation sends a[0], b[0], a[1], b[1]... one after another.
func renderConversation(cfg serialcfg.Config, a, b [][]byte) (*capture.EdgeTrace, *capture.EdgeTrace) {
	syn := [2]*capture.Synth{capture.NewSynth(0, cfg), capture.NewSynth(0, cfg)}
	queues := [2][][]byte{a, b}
	now := 0.0

	for i := 0; i < max(len(a), len(b)); i++ {
		for ch, q := range queues {
			if i >= len(q) {
				continue
			}
			now += synthGap * cfg.Period()
			syn[ch].IdleUntil(now)
			syn[ch].PutAll(framing.Encode(q[i]))
			now = syn[ch].Now()

			r := packet.Interpret(&framing.Frame{Data: q[i]})
			if r.Update != nil {
				cfg = *r.Update
				syn[0].SetConfig(cfg)
				syn[1].SetConfig(cfg)
			}
		}
	}

	end := now + synthGap*cfg.Period()
	return syn[0].Trace(end), syn[1].Trace(end)
}
