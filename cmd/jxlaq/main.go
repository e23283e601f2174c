// Command jxlaq runs the adaptive quantization pipeline on an image from
// the command line.
//
// Usage:
//
//	jxlaq field [options] <input>    PNG/JPEG → quant field heatmap PNG
//	jxlaq tokens [options] <input>   PNG/JPEG → coefficient token statistics
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepteams/jxl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "field":
		err = runField(os.Args[2:])
	case "tokens":
		err = runTokens(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "jxlaq: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "jxlaq: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  jxlaq field [options] <input>    Compute the quant field and write it as a heatmap PNG
  jxlaq tokens [options] <input>   Tokenize the coefficients and print statistics

Use "-" as input to read from stdin.

Run "jxlaq <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// searchFlags registers the shared pipeline options on fs and returns a
// closure building the params after parsing.
func searchFlags(fs *flag.FlagSet) func() (*jxl.Params, error) {
	distance := fs.Float64("d", 1.0, "target distance, smaller is better quality")
	tier := fs.String("tier", "squirrel", "effort: falcon/cheetah/hare/wombat/squirrel/kitten/tortoise")
	iters := fs.Int("iters", 4, "search iterations of the standard search")
	itersHQ := fs.Int("hq_iters", 100, "scoring passes of the exhaustive search")
	uniform := fs.Float64("uniform", 0, "uniform quant strength (0=use the model field)")
	verbose := fs.Bool("v", false, "log search state to stderr")
	dump := fs.String("dump", "", "directory for debug plane dumps")
	return func() (*jxl.Params, error) {
		t, err := parseTier(*tier)
		if err != nil {
			return nil, err
		}
		p := jxl.DefaultParams(float32(*distance))
		p.Tier = t
		p.MaxIters = *iters
		p.MaxItersHQ = *itersHQ
		p.UniformQuant = float32(*uniform)
		if *verbose {
			p.Debug.LogSearchState = true
			p.Debug.Sink = &jxl.LogSink{W: os.Stderr}
		}
		if *dump != "" {
			if err := os.MkdirAll(*dump, 0o755); err != nil {
				return nil, err
			}
			p.Debug.Sink = &jxl.FileSink{Dir: *dump, Log: os.Stderr}
		}
		return p, nil
	}
}

func parseTier(s string) (jxl.SpeedTier, error) {
	switch strings.ToLower(s) {
	case "falcon":
		return jxl.TierFalcon, nil
	case "cheetah":
		return jxl.TierCheetah, nil
	case "hare":
		return jxl.TierHare, nil
	case "wombat":
		return jxl.TierWombat, nil
	case "squirrel":
		return jxl.TierSquirrel, nil
	case "kitten":
		return jxl.TierKitten, nil
	case "tortoise":
		return jxl.TierTortoise, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", s)
	}
}

// prepare decodes the input and runs the field build and quantizer search.
func prepare(inputPath string, p *jxl.Params) (*jxl.EncoderState, error) {
	in, err := openInput(inputPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	b := img.Bounds()
	opsin := rgbToOpsin(img)
	s := jxl.NewEncoderState(opsin, b.Dx(), b.Dy())
	s.InitialQuantField(p)
	if err := s.FindBestQuantizer(jxl.Plane3{}, p); err != nil {
		return nil, err
	}
	return s, nil
}

// --- field ---

func runField(args []string) error {
	fs := flag.NewFlagSet("field", flag.ContinueOnError)
	params := searchFlags(fs)
	output := fs.String("o", "", `output path (default: <input>_field.png, "-" for stdout)`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("field: missing input file\nUsage: jxlaq field [options] <input>")
	}
	inputPath := fs.Arg(0)

	p, err := params()
	if err != nil {
		return err
	}
	s, err := prepare(inputPath, p)
	if err != nil {
		return fmt.Errorf("field: %w", err)
	}

	heat := heatmapImage(s.QuantField)
	outputPath := *output
	if outputPath == "-" {
		return png.Encode(os.Stdout, heat)
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "field.png"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + "_field.png"
		}
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, heat); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("field: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	min, max := s.QuantField.MinMax()
	fmt.Fprintf(os.Stderr, "Quant field %s → %s (%dx%d blocks, range %.3f ... %.3f, DC %.3f)\n",
		inputPath, outputPath, s.QuantField.W, s.QuantField.H, min, max, s.QuantDC())
	return nil
}

// heatmapImage renders the quant field as one gray pixel per block, the
// field minimum black and the maximum white.
func heatmapImage(field *jxl.Plane) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, field.W, field.H))
	min, max := field.MinMax()
	scale := max - min
	if scale <= 0 {
		scale = 1
	}
	for y := 0; y < field.H; y++ {
		row := field.Row(y)
		for x, v := range row {
			out.SetGray(x, y, color.Gray{Y: uint8(255 * (v - min) / scale)})
		}
	}
	return out
}

// --- tokens ---

func runTokens(args []string) error {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	params := searchFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("tokens: missing input file\nUsage: jxlaq tokens [options] <input>")
	}
	inputPath := fs.Arg(0)

	p, err := params()
	if err != nil {
		return err
	}
	s, err := prepare(inputPath, p)
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}
	tokens, err := s.TokenizeCoefficients()
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	numBlocks := s.Dim.XSizeBlocks * s.Dim.YSizeBlocks
	var nonzero int
	seen := map[uint32]struct{}{}
	for _, tok := range tokens {
		seen[tok.Ctx] = struct{}{}
		if tok.Value != 0 {
			nonzero++
		}
	}

	fmt.Printf("File:            %s\n", inputPath)
	fmt.Printf("Blocks:          %d (%dx%d)\n", numBlocks, s.Dim.XSizeBlocks, s.Dim.YSizeBlocks)
	fmt.Printf("Tokens:          %d\n", len(tokens))
	fmt.Printf("Non-zero values: %d\n", nonzero)
	fmt.Printf("Contexts used:   %d\n", len(seen))
	fmt.Printf("Tokens/block:    %.2f\n", float64(len(tokens))/float64(numBlocks))
	return nil
}

// Opsin absorbance matrix and bias of the forward color transform, applied
// to linear RGB before the cube root.
var opsinMatrix = [9]float64{
	0.30, 0.622, 0.078,
	0.23, 0.692, 0.078,
	0.2434226892454782, 0.2047674442449682, 0.5518098665095535,
}

const opsinBias = 0.0037930732552754493

// rgbToOpsin converts an sRGB image to the three opsin planes: X holds the
// red-green opponent, Y the intensity and B the blue-yellow channel.
func rgbToOpsin(img image.Image) jxl.Plane3 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := jxl.NewPlane3(w, h)
	cbrtBias := math.Cbrt(opsinBias)
	for y := 0; y < h; y++ {
		rowX := out[0].Row(y)
		rowY := out[1].Row(y)
		rowB := out[2].Row(y)
		for x := 0; x < w; x++ {
			pr, pg, pb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r := srgbToLinear(float64(pr) / 65535)
			g := srgbToLinear(float64(pg) / 65535)
			bl := srgbToLinear(float64(pb) / 65535)
			l := opsinMatrix[0]*r + opsinMatrix[1]*g + opsinMatrix[2]*bl + opsinBias
			m := opsinMatrix[3]*r + opsinMatrix[4]*g + opsinMatrix[5]*bl + opsinBias
			s := opsinMatrix[6]*r + opsinMatrix[7]*g + opsinMatrix[8]*bl + opsinBias
			l = math.Cbrt(l) - cbrtBias
			m = math.Cbrt(m) - cbrtBias
			s = math.Cbrt(s) - cbrtBias
			rowX[x] = float32((l - m) / 2)
			rowY[x] = float32((l + m) / 2)
			rowB[x] = float32(s)
		}
	}
	return out
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
