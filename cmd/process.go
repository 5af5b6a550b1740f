package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/NethermindEth/staking-sidecar/pkg/mappings"
	"github.com/NethermindEth/staking-sidecar/pkg/pipeline"
	"github.com/NethermindEth/staking-sidecar/pkg/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Apply one block to a mapping snapshot",
	Long: `Decode a block, apply its credits.aleo staking operations to the bonded, unbonding
and withdraw mappings, and write the settlements together with the mappings for the next block.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindCommandFlags(cmd); err != nil {
			return err
		}
		cfg, l, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		pc := cfg.ProcessConfig
		if pc.BlockFile == "" {
			return errors.New("a block file is required")
		}
		format, err := report.ParseFormat(pc.ReportFormat)
		if err != nil {
			return err
		}

		c, err := newComponents(ctx, cfg, l)
		if err != nil {
			return err
		}
		defer c.Close()

		raw, err := os.ReadFile(pc.BlockFile)
		if err != nil {
			return errors.Wrap(err, "failed to read block file")
		}
		snapshot, err := readSnapshotFiles(&pc, cfg.DecodeMode == "checked")
		if err != nil {
			return err
		}

		output, err := c.pipeline.ProcessBlockBytes(ctx, raw, snapshot)
		if err != nil {
			return err
		}
		r := report.NewReport(output.Height, output.Operations, output.Result, output.StateRoot)

		l.Sugar().Infow("Processed block",
			zap.Uint32("blockHeight", output.Height),
			zap.Int("operations", len(output.Operations)),
			zap.Int("settlements", output.Result.Settlements.Len()),
			zap.String("stateRoot", string(output.StateRoot)),
		)

		if pc.OutputDir == "" {
			return r.Write(cmd.OutOrStdout(), format)
		}
		return writeProcessOutputs(pc.OutputDir, output, r, format)
	},
}

func init() {
	processCmd.Flags().String(config.ProcessBlockFile, "", "Path to the block document (required)")
	processCmd.Flags().String(config.ProcessBondedFile, "", "Path to the bonded mapping JSON (empty mapping if unset)")
	processCmd.Flags().String(config.ProcessUnbondingFile, "", "Path to the unbonding mapping JSON (empty mapping if unset)")
	processCmd.Flags().String(config.ProcessWithdrawFile, "", "Path to the withdraw mapping JSON (empty mapping if unset)")
	processCmd.Flags().String(config.ProcessOutputDir, "", "Directory for the next mappings and the settlement report; stdout report if unset")
	processCmd.Flags().String(config.ProcessReportFormat, "json", `Settlement report format ("json" or "csv")`)
}

func readMappingFile(path string) ([]byte, error) {
	if path == "" {
		return []byte("[]"), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mapping file '%s'", path)
	}
	return data, nil
}

func readSnapshotFiles(pc *config.ProcessConfig, checked bool) (*mappings.Snapshot, error) {
	var doc mappings.SnapshotJSON
	var err error
	if doc.Bonded, err = readMappingFile(pc.BondedFile); err != nil {
		return nil, err
	}
	if doc.Unbonding, err = readMappingFile(pc.UnbondingFile); err != nil {
		return nil, err
	}
	if doc.Withdraw, err = readMappingFile(pc.WithdrawFile); err != nil {
		return nil, err
	}
	return mappings.DecodeSnapshotJSON(doc, checked)
}

// writeSnapshotFiles writes the mappings in the same layout readSnapshotFiles reads.
func writeSnapshotFiles(dir string, snapshot *mappings.Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	doc, err := mappings.EncodeSnapshotJSON(snapshot)
	if err != nil {
		return err
	}
	files := map[string][]byte{
		"bonded.json":    doc.Bonded,
		"unbonding.json": doc.Unbonding,
		"withdraw.json":  doc.Withdraw,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), append(data, '\n'), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", name)
		}
	}
	return nil
}

func writeProcessOutputs(dir string, output *pipeline.BlockOutput, r *report.Report, format report.Format) error {
	if err := writeSnapshotFiles(dir, output.Result.Snapshot); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("settlements.%s", format)))
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Write(f, format)
}
