// Command report summarises a journaled race session: speed statistics on
// stdout, an HTML chart of speed and RPM over the race distance, and an
// optional PNG speed histogram.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/trackpilot/internal/db"
)

var (
	dbPath    = flag.String("db", "race.db", "Path to the sqlite race journal")
	sessionID = flag.String("session", "", "Session to report on (empty lists sessions)")
	htmlOut   = flag.String("out", "report.html", "Output HTML chart path")
	histOut   = flag.String("hist", "", "Optional output PNG speed histogram path")
)

func main() {
	flag.Parse()

	journal, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}
	defer journal.Close()

	if *sessionID == "" {
		listSessions(journal)
		return
	}

	frames, err := journal.Frames(*sessionID)
	if err != nil {
		log.Fatalf("failed to load frames: %v", err)
	}
	if len(frames) == 0 {
		log.Fatalf("no frames journaled for session %s", *sessionID)
	}

	speeds := make([]float64, len(frames))
	for i, f := range frames {
		speeds[i] = f.SpeedX
	}
	printStats(speeds, frames)

	if err := writeChart(*htmlOut, frames); err != nil {
		log.Fatalf("failed to write chart: %v", err)
	}
	log.Printf("wrote %s", *htmlOut)

	if *histOut != "" {
		if err := writeHistogram(*histOut, speeds); err != nil {
			log.Fatalf("failed to write histogram: %v", err)
		}
		log.Printf("wrote %s", *histOut)
	}
}

func listSessions(journal *db.DB) {
	rows, err := journal.Sessions(50)
	if err != nil {
		log.Fatalf("failed to list sessions: %v", err)
	}
	if len(rows) == 0 {
		fmt.Println("journal is empty")
		return
	}
	for _, r := range rows {
		fmt.Printf("%s  %s:%d  stage=%d track=%s outcome=%s pos=%d  %s\n",
			r.ID, r.Host, r.Port, r.Stage, r.Track, r.Outcome, r.FinalPos,
			r.StartedAt.Format("2006-01-02 15:04:05"))
	}
}

func printStats(speeds []float64, frames []db.FramePoint) {
	sorted := append([]float64(nil), speeds...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(speeds, nil)
	fmt.Printf("frames:     %d\n", len(frames))
	fmt.Printf("distance:   %.1f\n", frames[len(frames)-1].DistRaced)
	fmt.Printf("speed mean: %.2f\n", mean)
	fmt.Printf("speed std:  %.2f\n", std)
	fmt.Printf("speed p50:  %.2f\n", stat.Quantile(0.5, stat.Empirical, sorted, nil))
	fmt.Printf("speed p95:  %.2f\n", stat.Quantile(0.95, stat.Empirical, sorted, nil))
	fmt.Printf("speed max:  %.2f\n", sorted[len(sorted)-1])

	maxDamage := 0.0
	for _, f := range frames {
		if f.Damage > maxDamage {
			maxDamage = f.Damage
		}
	}
	fmt.Printf("damage:     %.0f\n", maxDamage)
}

func writeChart(path string, frames []db.FramePoint) error {
	x := make([]string, len(frames))
	speed := make([]opts.LineData, len(frames))
	rpm := make([]opts.LineData, len(frames))
	for i, f := range frames {
		x[i] = fmt.Sprintf("%.0f", f.DistRaced)
		speed[i] = opts.LineData{Value: f.SpeedX}
		rpm[i] = opts.LineData{Value: f.RPM / 100} // same scale as speed
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Race trace", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Speed and RPM over race distance"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Distance (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "speed / rpm-hundreds"}),
	)
	line.SetXAxis(x).
		AddSeries("speedX", speed).
		AddSeries("rpm/100", rpm)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return line.Render(f)
}

func writeHistogram(path string, speeds []float64) error {
	p := plot.New()
	p.Title.Text = "Speed distribution"
	p.X.Label.Text = "speedX"
	p.Y.Label.Text = "frames"

	h, err := plotter.NewHist(plotter.Values(speeds), 32)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
