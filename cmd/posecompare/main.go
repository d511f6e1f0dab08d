// Command posecompare evaluates how well the mixed similarity score
// separates same-pose pairs from different-pose pairs.
//
// Pairs come from a JSON file (-pairs) or the samadhi database (-db). With
// -image1 and -image2 it instead detects both images and prints the pair.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ayusman/samadhi/internal/capture"
	"github.com/ayusman/samadhi/internal/classifier"
	"github.com/ayusman/samadhi/internal/detector"
	"github.com/ayusman/samadhi/internal/evaluate"
	"github.com/ayusman/samadhi/internal/monitoring"
	"github.com/ayusman/samadhi/internal/report"
	"github.com/ayusman/samadhi/internal/session"
	"github.com/ayusman/samadhi/internal/similarity"
	"github.com/ayusman/samadhi/internal/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "posecompare: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	pairsPath string
	dbPath    string
	lambdas   []float64
	lambda    float64
	csvPath   string
	jsonPath  string
	htmlPath  string
	pngPath   string
	sample    int
	seed      int64

	image1, image2   string
	answer1, answer2 string
}

func parseFlags(args []string) (options, error) {
	var o options
	var lambdas string

	fs := flag.NewFlagSet("posecompare", flag.ContinueOnError)
	fs.StringVar(&o.pairsPath, "pairs", "", "JSON file with an array of labeled pairs")
	fs.StringVar(&o.dbPath, "db", "", "samadhi database to read stored pairs from")
	fs.StringVar(&lambdas, "lambdas", "", "comma-separated blend weights to sweep (default 0,0.2,...,1)")
	fs.Float64Var(&o.lambda, "lambda", similarity.DefaultLambda, "blend weight for exported rows")
	fs.StringVar(&o.csvPath, "csv", "", "write flattened pairs as CSV")
	fs.StringVar(&o.jsonPath, "json", "", "write flattened pairs as JSON")
	fs.StringVar(&o.htmlPath, "html", "", "write an HTML accuracy chart")
	fs.StringVar(&o.pngPath, "png", "", "write a PNG accuracy chart")
	fs.IntVar(&o.sample, "sample", 0, "evaluate a balanced sample of at most N pairs")
	fs.Int64Var(&o.seed, "seed", 1, "random seed for -sample")
	fs.StringVar(&o.image1, "image1", "", "first image to compare")
	fs.StringVar(&o.image2, "image2", "", "second image to compare")
	fs.StringVar(&o.answer1, "answer1", "", "pose shown in -image1")
	fs.StringVar(&o.answer2, "answer2", "", "pose shown in -image2")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	for _, s := range strings.Split(lambdas, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 1 {
			return o, fmt.Errorf("invalid lambda %q", s)
		}
		o.lambdas = append(o.lambdas, v)
	}
	if o.lambda < 0 || o.lambda > 1 {
		return o, fmt.Errorf("invalid lambda %v", o.lambda)
	}

	imageMode := o.image1 != "" || o.image2 != ""
	switch {
	case imageMode && (o.image1 == "" || o.image2 == ""):
		return o, errors.New("-image1 and -image2 go together")
	case !imageMode && (o.pairsPath == "") == (o.dbPath == ""):
		return o, errors.New("exactly one of -pairs or -db is required")
	}
	return o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	if o.image1 != "" {
		return compareImages(o, stdout)
	}

	pairs, err := loadPairs(o)
	if err != nil {
		return err
	}
	if o.sample > 0 {
		pairs = evaluate.BalancedSample(pairs, o.sample, rand.New(rand.NewSource(o.seed)))
		monitoring.Logf("Sampled %d pairs", len(pairs))
	}

	curves, err := evaluate.SweepLambdas(pairs, o.lambdas)
	if err != nil {
		return err
	}
	printSummary(stdout, len(pairs), curves)

	return writeOutputs(o, pairs, curves)
}

func loadPairs(o options) ([]evaluate.LabeledPair, error) {
	if o.dbPath != "" {
		st, err := store.New(o.dbPath)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Pairs().LabeledPairs()
	}

	data, err := os.ReadFile(o.pairsPath)
	if err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}
	var pairs []evaluate.LabeledPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parse pairs %s: %w", o.pairsPath, err)
	}
	return pairs, nil
}

func printSummary(w io.Writer, n int, curves []evaluate.LambdaCurve) {
	fmt.Fprintf(w, "%d pairs\n", n)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LAMBDA\tTHRESHOLD\tACCURACY\tPRECISION\tRECALL\tF1")
	for _, c := range curves {
		b := c.Best
		fmt.Fprintf(tw, "%.1f\t%d\t%.3f\t%.3f\t%.3f\t%.3f\n", c.Lambda, b.Threshold, b.Accuracy, b.Precision, b.Recall, b.F1)
	}
	tw.Flush()

	if best, ok := evaluate.BestLambda(curves); ok {
		fmt.Fprintf(w, "best: lambda=%.1f threshold=%d accuracy=%.3f\n", best.Lambda, best.Best.Threshold, best.Best.Accuracy)
	}
}

func writeOutputs(o options, pairs []evaluate.LabeledPair, curves []evaluate.LambdaCurve) error {
	rows := evaluate.ToFlatRows(pairs, o.lambda)
	if o.csvPath != "" {
		if err := writeFile(o.csvPath, func(w io.Writer) error { return evaluate.WriteCSV(w, rows) }); err != nil {
			return err
		}
	}
	if o.jsonPath != "" {
		if err := writeFile(o.jsonPath, func(w io.Writer) error { return evaluate.WriteJSON(w, rows) }); err != nil {
			return err
		}
	}
	if o.htmlPath != "" {
		if err := writeFile(o.htmlPath, func(w io.Writer) error { return report.RenderHTML(w, curves) }); err != nil {
			return err
		}
	}
	if o.pngPath != "" {
		if err := report.SavePNG(o.pngPath, curves); err != nil {
			return fmt.Errorf("write %s: %w", o.pngPath, err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// compareImages detects both images with MediaPipe and prints the pair.
func compareImages(o options, w io.Writer) error {
	d, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		return fmt.Errorf("pose detector: %w", err)
	}
	defer d.Close()

	img1, err := capture.LoadImage(o.image1)
	if err != nil {
		return err
	}
	img2, err := capture.LoadImage(o.image2)
	if err != nil {
		return err
	}

	tr := session.NewTracker(d, nil, classifier.Options{Lambda: o.lambda, MinScore: classifier.DefaultMinScore})
	pair, err := tr.ProcessImagePair(
		session.ImageInput{Path: o.image1, Answer: o.answer1, Image: img1},
		session.ImageInput{Path: o.image2, Answer: o.answer2, Image: img2},
	)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pair)
}
