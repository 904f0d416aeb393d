// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package run executes YAML scenarios against an engine.
package run

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/luxfi/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	dto "github.com/prometheus/client_model/go"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

const (
	PersistKey = "persist"
	MetricsKey = "print-metrics"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Runs a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runFunc,
	}
	flags := c.Flags()
	flags.Bool(PersistKey, false, "Run against the data directory instead of a fresh in-memory engine")
	flags.Bool(MetricsKey, false, "Print the engine metrics after the scenario")
	return c
}

func runFunc(c *cobra.Command, args []string) (err error) {
	flags := c.Flags()
	persist, err := flags.GetBool(PersistKey)
	if err != nil {
		return err
	}
	printMetrics, err := flags.GetBool(MetricsKey)
	if err != nil {
		return err
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	scenario, err := Parse(b)
	if err != nil {
		return fmt.Errorf("invalid scenario %s: %w", args[0], err)
	}

	cfg, err := node.ParseFlags(flags)
	if err != nil {
		return err
	}
	if scenario.Start != 0 {
		cfg.Now = scenario.Start
	}
	var n *node.Node
	if persist {
		n, err = node.OpenDir(cfg)
	} else {
		n, err = node.New(memdb.New(), cfg)
	}
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, n.Close())
	}()

	w := c.OutOrStdout()
	if err := NewRunner(n, w).Run(c.Context(), scenario); err != nil {
		return err
	}
	if printMetrics {
		return PrintMetrics(w, n.Registry)
	}
	return nil
}

// PrintMetrics writes every sample gathered by [g], sorted by name.
func PrintMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, family := range families {
		for _, m := range family.GetMetric() {
			lines = append(lines, fmt.Sprintf("%s%s %g", family.GetName(), labels(m), value(family.GetType(), m)))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

func labels(m *dto.Metric) string {
	pairs := m.GetLabel()
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, pair := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func value(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return m.GetUntyped().GetValue()
	}
}
