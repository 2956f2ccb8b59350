package cmd

import (
	"fmt"
	"os"

	"github.com/dzjyyds666/cwq/loader"
	"github.com/dzjyyds666/cwq/parse/clausewitz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type FmtParams struct {
	Write bool
}

var fmtParams = &FmtParams{}

var fmtCmd = &cobra.Command{
	Use:   "fmt <paths...>",
	Short: "reformat script files",
	Long:  "Reformat script files with one assignment per line and tab indentation. Comments are not kept.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  fmtRun,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtParams.Write, "write", "w", false, "write result to the source file instead of stdout")
}

func fmtRun(cmd *cobra.Command, args []string) error {
	files, err := collectInputs(args)
	if err != nil {
		return err
	}
	enc, err := loader.ParseEncoding(cfg.Encoding)
	if err != nil {
		return err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return &loader.IOError{Path: path, Err: err}
		}
		text, err := loader.Decode(data, enc)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		parsed, err := clausewitz.ParseString(text)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out := clausewitz.Format(parsed)

		if !fmtParams.Write {
			fmt.Fprint(cmd.OutOrStdout(), out)
			continue
		}
		if out == text {
			continue
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return err
		}
		logger.Info("formatted", zap.String("file", path))
	}
	return nil
}
