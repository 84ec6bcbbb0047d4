package train

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Preprocess copies a headered CSV from inPath to outPath, dropping
// every row with a missing or non-numeric cell so the result loads
// cleanly as a feature matrix. Returns the kept and dropped row
// counts.
func Preprocess(inPath, outPath string) (kept, dropped int, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open input %s: %w", inPath, err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read input %s: %w", inPath, err)
	}
	if len(records) == 0 {
		return 0, 0, fmt.Errorf("input %s is empty", inPath)
	}

	header := records[0]
	clean := [][]string{header}
	for _, record := range records[1:] {
		if len(record) != len(header) || !allNumeric(record) {
			dropped++
			continue
		}
		clean = append(clean, record)
		kept++
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create output %s: %w", outPath, err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.WriteAll(clean); err != nil {
		return 0, 0, fmt.Errorf("failed to write output %s: %w", outPath, err)
	}

	return kept, dropped, nil
}

func allNumeric(record []string) bool {
	for _, cell := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return false
		}
	}
	return true
}
