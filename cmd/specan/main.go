package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gopkg.in/yaml.v3"

	"github.com/linuxmatters/specan/format"
	"github.com/linuxmatters/specan/fourier"
	"github.com/linuxmatters/specan/internal/cli"
	"github.com/linuxmatters/specan/spectrum"
)

const version = "0.1.0"

var CLI struct {
	Config  string           `help:"Analysis configuration file (YAML)." short:"c" type:"existingfile"`
	Verbose bool             `help:"Enable debug logging." short:"v"`
	Version kong.VersionFlag `help:"Show version information."`

	Preview PreviewCmd `cmd:"" help:"Show the component list the engine would measure."`
	Analyze AnalyzeCmd `cmd:"" help:"Analyze a spectrum fixture (.yaml) or WAV capture (.wav)."`
	Init    InitCmd    `cmd:"" help:"Write a default analysis configuration."`
}

type appContext struct {
	logger *log.Logger
	cfg    *fourier.Config
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("specan"),
		kong.Description("Decompose a sampled-waveform power spectrum into signal, distortion, spurs, and noise, with SNR/SINAD/SFDR/NSD figures of merit."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if CLI.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := fourier.NewConfig()
	if CLI.Config != "" {
		var err error
		cfg, err = fourier.Load(CLI.Config)
		if err != nil {
			logger.Fatal("load configuration", "path", CLI.Config, "err", err)
		}
		logger.Debug("configuration loaded", "path", CLI.Config)
	}

	if err := ctx.Run(&appContext{logger: logger, cfg: cfg}); err != nil {
		logger.Fatal(err)
	}
}

// PreviewCmd renders the expanded component list.
type PreviewCmd struct {
	Complex bool `help:"Preview for a complex (full-circle) spectrum."`
}

func (p *PreviewCmd) Run(app *appContext) error {
	out, err := app.cfg.Preview(p.Complex)
	if err != nil {
		return err
	}
	cli.PrintSection("Component preview")
	fmt.Print(out)
	return nil
}

// InitCmd writes the default configuration for editing.
type InitCmd struct {
	Path string `arg:"" help:"Destination file." type:"path"`
}

func (i *InitCmd) Run(app *appContext) error {
	if err := fourier.NewConfig().Save(i.Path); err != nil {
		return err
	}
	cli.PrintSuccess("wrote " + i.Path)
	return nil
}

// AnalyzeCmd runs the engine over a spectrum from disk.
type AnalyzeCmd struct {
	Input  string `arg:"" help:"Spectrum fixture (.yaml) or WAV capture (.wav)." type:"existingfile"`
	NFFT   int    `help:"FFT length for WAV input (0 = largest power of two that fits)." default:"0"`
	Axis   string `help:"Frequency axis: real, dcleft, or dccenter." enum:"real,dcleft,dccenter" default:"real"`
	Window string `help:"Window for WAV input: blackmanharris, hann, or none." enum:"blackmanharris,hann,none" default:"none"`
	Tones  bool   `help:"Print the per-tone table." short:"t"`
}

func (a *AnalyzeCmd) Run(app *appContext) error {
	msq, nfft, axis, err := a.loadSpectrum(app)
	if err != nil {
		return err
	}
	app.logger.Debug("spectrum ready", "bins", len(msq), "nfft", nfft)

	results, err := fourier.Analyze(app.cfg, msq, nfft, axis)
	if err != nil {
		return err
	}

	metrics := make([][2]string, 0, 6)
	for _, kind := range []fourier.ResultKind{
		fourier.ResultSFDR, fourier.ResultSNR, fourier.ResultSINAD,
		fourier.ResultFSNR, fourier.ResultNSD, fourier.ResultABN,
	} {
		v, err := results.Get(kind)
		if err != nil {
			return err
		}
		label := strings.ToUpper(kind.String())
		metrics = append(metrics, [2]string{label, fmt.Sprintf("%.2f %s", v, kind.Units())})
	}
	cli.PrintMetricsSummary(metrics)

	if a.Tones {
		cli.PrintSection("Tones")
		header := [][]string{{"Key", "Tag", "FFinal", "dBFS", "dBc", "Phase"}}
		fmt.Print(format.Table(header, results.ToneData(), 2, true, true))
	}

	cli.PrintSection("Results")
	fmt.Print(format.ResultTable(results.ResultData(), 2, true, true))
	return nil
}

// spectrumDoc is the YAML shape of a spectrum fixture: mean-square
// magnitudes plus the FFT length that produced them.
type spectrumDoc struct {
	NFFT int       `yaml:"nfft"`
	MSq  []float64 `yaml:"msq"`
}

func (a *AnalyzeCmd) loadSpectrum(app *appContext) ([]float64, int, fourier.AxisType, error) {
	axis := map[string]fourier.AxisType{
		"real":     fourier.AxisReal,
		"dcleft":   fourier.AxisDcLeft,
		"dccenter": fourier.AxisDcCenter,
	}[a.Axis]

	if strings.HasSuffix(strings.ToLower(a.Input), ".wav") {
		msq, nfft, err := a.loadWAV(app)
		return msq, nfft, axis, err
	}

	f, err := os.Open(a.Input)
	if err != nil {
		return nil, 0, axis, err
	}
	defer f.Close()
	var doc spectrumDoc
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, 0, axis, fmt.Errorf("parse spectrum fixture: %w", err)
	}
	return doc.MSq, doc.NFFT, axis, nil
}

func (a *AnalyzeCmd) loadWAV(app *appContext) ([]float64, int, error) {
	f, err := os.Open(a.Input)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode WAV: %w", err)
	}
	samples := normalizeBuffer(buf)
	app.logger.Debug("WAV decoded",
		"samples", len(samples),
		"rate", buf.Format.SampleRate)

	nfft := a.NFFT
	if nfft == 0 {
		nfft = 1 << int(math.Floor(math.Log2(float64(len(samples)))))
	}
	if nfft > len(samples) {
		return nil, 0, fmt.Errorf("NFFT %d exceeds sample count %d", nfft, len(samples))
	}

	window := map[string]fourier.Window{
		"blackmanharris": fourier.WindowBlackmanHarris,
		"hann":           fourier.WindowHann,
		"none":           fourier.WindowNone,
	}[a.Window]
	msq, err := spectrum.RealMS(samples[:nfft], window)
	if err != nil {
		return nil, 0, err
	}
	return msq, nfft, nil
}

// normalizeBuffer scales PCM codes into [-1, 1) by the source bit depth.
func normalizeBuffer(buf *audio.IntBuffer) []float64 {
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	scale := 1.0 / float64(int64(1)<<(depth-1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) * scale
	}
	return samples
}
