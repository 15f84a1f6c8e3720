package utils

import (
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/facette/natsort"
)

type CSV [][]string

func (data CSV) Less(i, j int) bool {
	return natsort.Compare(data[i][0], data[j][0])
}

func (data CSV) Len() int {
	return len(data)
}

func (data CSV) Swap(i, j int) {
	data[i], data[j] = data[j], data[i]
}

// WriteAsCSV writes the header row followed by data rows sorted in natural
// order of the first column. With makeDir set the file lands in a
// per-suffix directory, otherwise the suffix joins the model name.
func WriteAsCSV(data CSV, makeDir bool, path, suffix, modelName string, columns []string) error {
	file, err := OpenFile(makeDir, path, suffix, modelName)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", modelName+"_"+suffix, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}
	sort.Sort(data)
	if err := w.WriteAll(data); err != nil {
		return fmt.Errorf("error writing csv: %w", err)
	}
	w.Flush()
	return w.Error()
}
