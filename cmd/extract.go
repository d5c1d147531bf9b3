/*
Copyright © 2025 docqa
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docqa/docqa-be/service"
	"github.com/docqa/docqa-be/types"
)

// extractCmd runs the extraction pipeline on a local file and prints the
// result as JSON, without starting the server.
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract and analyze a local PDF",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withChunks, _ := cmd.Flags().GetBool("chunks")
		allowOCR, _ := cmd.Flags().GetBool("ocr")

		data, err := os.ReadFile(args[0])
		if err != nil {
			slog.Error("failed to read file", "error", err)
			os.Exit(1)
		}

		extractionCfg := types.DefaultExtractionConfig
		pdfService := service.NewPDFService(extractionCfg)

		result, err := pdfService.Extract(data, args[0])
		if err != nil && allowOCR {
			ocr, ocrErr := service.NewTesseractOCR("")
			if ocrErr != nil {
				slog.Error("OCR unavailable", "error", ocrErr)
				os.Exit(1)
			}
			raster := service.NewRasterService(ocr, extractionCfg)
			result, err = raster.ExtractFile(context.Background(), args[0], func(update types.ProgressUpdate) {
				fmt.Fprintf(os.Stderr, "page %d/%d (%s)\n", update.Page, update.TotalPages, update.Mode)
			})
		}
		if err != nil {
			slog.Error("extraction failed", "error", err)
			os.Exit(1)
		}

		result.Structure = service.AnalyzeStructure(result.Text)
		analysis := service.AnalyzeContent(result.Text, result.Structure)

		output := map[string]interface{}{
			"result":   result,
			"analysis": analysis,
		}
		if withChunks {
			chunks, err := service.ChunkText(result.Text, extractionCfg.ChunkSize, extractionCfg.ChunkOverlap)
			if err != nil {
				slog.Error("chunking failed", "error", err)
				os.Exit(1)
			}
			output["chunks"] = chunks
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			slog.Error("failed to encode output", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	extractCmd.Flags().Bool("chunks", false, "include the chunk sequence in the output")
	extractCmd.Flags().Bool("ocr", true, "fall back to OCR when the text layer is unusable")
	rootCmd.AddCommand(extractCmd)
}
