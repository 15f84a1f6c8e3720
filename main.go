package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/facette/natsort"

	"github.com/wildstyl3r/gotrim/internal/config"
	"github.com/wildstyl3r/gotrim/internal/engine"
	"github.com/wildstyl3r/gotrim/internal/sim"
	"github.com/wildstyl3r/gotrim/internal/utils"
)

func main() {
	var configFileNamePointer = flag.String("input", "boron_in_silicon", "model configuration in toml format")
	var saveHist = flag.Bool("hist", false, "save depth histograms")
	var saveMoments = flag.Bool("mom", false, "save depth statistics")
	var saveEndStates = flag.Bool("fin", false, "save final ion states")
	var saveRecoils = flag.Bool("rec", false, "save recoil end states (cascade mode)")
	var threadsFlag = flag.Int("threads", 0, "worker threads per model (0 = all CPUs)")
	var benchIons = flag.String("bench", "", "comma-separated ion counts; run each model over them and save mean run times")
	var benchRuns = flag.Int("benchruns", 5, "runs per benchmark point")
	flag.Parse()

	startTime := time.Now()
	fmt.Printf("Current time: %s\n", startTime.UTC().Format(time.UnixDate))

	configFileName := strings.TrimSuffix(*configFileNamePointer, ".toml")
	cfg, meta, err := config.LoadConfig(configFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	outputPath := ""
	if cfg.OutputDir != "" && cfg.OutputDir != "." {
		os.MkdirAll(cfg.OutputDir, 0750)
		outputPath = cfg.OutputDir + "/"
	}

	nthreads := *threadsFlag
	if nthreads == 0 {
		nthreads = cfg.Threads
	}
	if nthreads == 0 {
		nthreads = runtime.NumCPU()
	}

	var benchCounts []int
	if *benchIons != "" {
		for _, tok := range strings.Split(*benchIons, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "invalid benchmark ion count %q\n", tok)
				os.Exit(1)
			}
			benchCounts = append(benchCounts, n)
		}
	}

	modelNames := make([]string, 0, len(cfg.Models))
	for name := range cfg.Models {
		modelNames = append(modelNames, name)
	}
	sort.Slice(modelNames, func(i, j int) bool {
		return natsort.Compare(modelNames[i], modelNames[j])
	})

	var benchRows [][]float64
	for _, modelName := range modelNames {
		parameters := cfg.Models[modelName]
		fmt.Println("\n" + modelName)
		if err := parameters.CheckAndUnify(modelName, &cfg, &meta); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		modelStart := time.Now()
		out, err := sim.Run(parameters.ToInput(nthreads))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		printSummary(&parameters, out)
		fmt.Printf("Simulation time: %v\n", time.Since(modelStart))

		if *saveMoments {
			saveCSV(momentRows(out), &parameters, outputPath, "stats", modelName,
				[]string{"species", "count", "mean (A)", "mean err (A)", "std (A)", "std err (A)", "skewness", "skewness err", "kurtosis", "kurtosis err"})
		}
		if *saveHist {
			saveCSV(histRows(out), &parameters, outputPath, "hist", modelName,
				histColumns(out))
		}
		if *saveEndStates {
			saveCSV(finalRows(out), &parameters, outputPath, "final", modelName,
				[]string{"ion", "x (A)", "y (A)", "z (A)", "dir x", "dir y", "dir z", "e (eV)", "state"})
		}
		if *saveRecoils {
			saveCSV(recoilRows(out), &parameters, outputPath, "recoils", modelName,
				[]string{"recoil", "x (A)", "y (A)", "z (A)", "dir x", "dir y", "dir z", "e (eV)", "state"})
		}

		if len(benchCounts) > 0 {
			benchRows = append(benchRows, benchModel(parameters, nthreads, benchCounts, *benchRuns))
		}
	}

	if len(benchRows) > 0 {
		if err := utils.WriteFloat64Matrix(outputPath+"avg_times.np", benchRows); err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Println("mean run times saved")
		}
	}
	fmt.Printf("Elapsed time: %v\n", time.Since(startTime))
}

func printSummary(p *config.ModelParameters, out *sim.Output) {
	countInside := 0
	for _, st := range out.State {
		if st == engine.StoppedInside {
			countInside++
		}
	}
	fmt.Printf("Number of ions stopped inside the target: %d / %d\n", countInside, p.NIons)
	for ivar := 0; ivar < out.Moments.NVar(); ivar++ {
		fmt.Printf("Statistics for atom species %d:\n", ivar)
		s, err := out.Moments.Summarize(ivar)
		if err != nil {
			fmt.Println("   No atoms stopped inside the target.")
			continue
		}
		fmt.Printf("   Number of atoms stopped inside the target: %d\n", s.Count)
		fmt.Printf("   Mean penetration depth: %.2f A +/- %.2f A\n", s.Mean, s.MeanErr)
		fmt.Printf("   Standard deviation of penetration depth: %.2f A +/- %.2f A\n", s.Std, s.StdErr)
		if !math.IsNaN(s.Skewness) {
			fmt.Printf("   Skewness: %.2f +/- %.2f\n", s.Skewness, s.SkewnessErr)
		}
		if !math.IsNaN(s.Kurtosis) {
			fmt.Printf("   Kurtosis: %.2f +/- %.2f\n", s.Kurtosis, s.KurtosisErr)
		}
	}
	if p.FollowRecoils {
		fmt.Printf("Recoils followed: %d over %d generations\n",
			out.Diag.TotalRecoils(), len(out.Diag.RecoilsPerGeneration))
	}
	if out.Diag.ScatterClamped > 0 || out.Diag.NaNKills > 0 {
		fmt.Printf("Diagnostics: %d scattering clamps, %d non-finite ion states\n",
			out.Diag.ScatterClamped, out.Diag.NaNKills)
	}
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func saveCSV(rows utils.CSV, p *config.ModelParameters, path, suffix, modelName string, columns []string) {
	if err := utils.WriteAsCSV(rows, p.MakeDir, path, suffix, modelName, columns); err != nil {
		fmt.Fprintln(os.Stderr, err)
	} else {
		fmt.Println(suffix + " saved")
	}
}

func momentRows(out *sim.Output) utils.CSV {
	var rows utils.CSV
	for ivar := 0; ivar < out.Moments.NVar(); ivar++ {
		s, err := out.Moments.Summarize(ivar)
		if err != nil {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(ivar), strconv.Itoa(s.Count),
			ff(s.Mean), ff(s.MeanErr), ff(s.Std), ff(s.StdErr),
			ff(s.Skewness), ff(s.SkewnessErr), ff(s.Kurtosis), ff(s.KurtosisErr),
		})
	}
	return rows
}

func histColumns(out *sim.Output) []string {
	columns := []string{"depth (A)"}
	for ivar := 0; ivar < out.Histogram.NVar(); ivar++ {
		columns = append(columns, fmt.Sprintf("species %d", ivar))
	}
	return columns
}

func histRows(out *sim.Output) utils.CSV {
	h := out.Histogram
	var rows utils.CSV
	for bin := -1; bin <= h.NBin(); bin++ {
		var label string
		switch bin {
		case -1:
			label = "underflow"
		case h.NBin():
			label = "overflow"
		default:
			label = ff(h.LowerEdge(bin))
		}
		row := []string{label}
		for ivar := 0; ivar < h.NVar(); ivar++ {
			row = append(row, strconv.FormatInt(h.Counts(ivar)[bin+1], 10))
		}
		rows = append(rows, row)
	}
	return rows
}

func finalRows(out *sim.Output) utils.CSV {
	var rows utils.CSV
	for i := range out.State {
		rows = append(rows, []string{
			strconv.Itoa(i),
			ff(out.Position[i][0]), ff(out.Position[i][1]), ff(out.Position[i][2]),
			ff(out.Direction[i][0]), ff(out.Direction[i][1]), ff(out.Direction[i][2]),
			ff(out.Energy[i]), out.State[i].String(),
		})
	}
	return rows
}

func recoilRows(out *sim.Output) utils.CSV {
	var rows utils.CSV
	for i, r := range out.Recoils {
		rows = append(rows, []string{
			strconv.Itoa(i),
			ff(r.Pos[0]), ff(r.Pos[1]), ff(r.Pos[2]),
			ff(r.Dir[0]), ff(r.Dir[1]), ff(r.Dir[2]),
			ff(r.E), r.State.String(),
		})
	}
	return rows
}

// benchModel times the model over the given ion counts and returns the
// mean wall-clock seconds per count, one benchmark matrix row.
func benchModel(p config.ModelParameters, nthreads int, counts []int, runs int) []float64 {
	row := make([]float64, len(counts))
	for ci, n := range counts {
		p.NIons = n
		times := make([]float64, 0, runs)
		for r := 0; r < runs; r++ {
			start := time.Now()
			if _, err := sim.Run(p.ToInput(nthreads)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				break
			}
			times = append(times, time.Since(start).Seconds())
		}
		row[ci] = utils.Average(times)
	}
	return row
}
