package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/janelia-flyem/ndimg/algorithm"
	"github.com/janelia-flyem/ndimg/algorithm/fft"
	"github.com/janelia-flyem/ndimg/image"
	"github.com/janelia-flyem/ndimg/loader"
	"github.com/janelia-flyem/ndimg/outofbounds"
	"github.com/janelia-flyem/ndimg/storage"
	"github.com/janelia-flyem/ndimg/types"
)

// InputParams names an image as one file per plane, or as a single raw volume
// when RawDims is given.
type InputParams struct {
	Files        []string `arg:"" help:"Image files, one per plane" type:"existingfile"`
	RawDims      []int    `help:"Read a single headerless file with this extent"`
	RawType      string   `help:"Sample type of a raw file" default:"uint16" enum:"uint8,uint16,uint32,float32"`
	LittleEndian bool     `help:"Raw samples are little-endian"`
}

func (p *InputParams) Validate(kctx *kong.Context) error {
	if len(p.RawDims) != 0 && len(p.Files) != 1 {
		return fmt.Errorf("a raw volume is read from exactly one file, got %d", len(p.Files))
	}
	return nil
}

// open reads the input into a float image on the configured storage.
func (p *InputParams) open(g *Globals) (*image.Image[*types.FloatType], error) {
	f := image.NewFactory(new(types.FloatType), g.factory)
	if len(p.RawDims) == 0 {
		r, err := loader.ReadStack(p.Files...)
		if err != nil {
			return nil, err
		}
		return loader.Open(r, f)
	}
	pt, err := loader.ParsePixelType(p.RawType)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p.Files[0])
	if err != nil {
		return nil, err
	}
	defer file.Close()
	r, err := loader.NewRawReader(filepath.Base(p.Files[0]), file, 0, p.RawDims, pt, p.LittleEndian, nil)
	if err != nil {
		return nil, err
	}
	return loader.Open(r, f)
}

// OutputParams selects where and which XY plane of a result is written.
type OutputParams struct {
	Out   string `required:"" short:"o" help:"Output file (.tif, .png or .bmp)"`
	Plane []int  `help:"Position selecting the XY plane to write; defaults to the origin"`
}

func (p *OutputParams) Validate(kctx *kong.Context) error {
	switch strings.ToLower(filepath.Ext(p.Out)) {
	case ".tif", ".tiff", ".png", ".bmp":
		return nil
	}
	return fmt.Errorf("unsupported output format %q", p.Out)
}

func validateIO(kctx *kong.Context, in *InputParams, out *OutputParams) error {
	if err := in.Validate(kctx); err != nil {
		return err
	}
	return out.Validate(kctx)
}

func (p *OutputParams) save(img *image.Image[*types.FloatType]) error {
	var pos []int
	if len(p.Plane) != 0 {
		pos = make([]int, img.NumDimensions())
		copy(pos, p.Plane)
	}
	return loader.Save(img, pos, p.Out)
}

type InfoCmd struct {
	InputParams
}

func (cmd *InfoCmd) Run(g *Globals) error {
	img, err := cmd.open(g)
	if err != nil {
		return err
	}
	defer img.Close()

	minV, maxV, sum := math.Inf(1), math.Inf(-1), 0.0
	cur := img.CreateCursor()
	for cur.HasNext() {
		cur.Fwd()
		v := cur.Type().GetRealDouble()
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
		sum += v
	}
	cur.Close()

	fmt.Printf("%s\n", img)
	fmt.Printf("  calibration: %v\n", img.Calibration())
	fmt.Printf("  memory:      %s\n", humanize.Bytes(uint64(img.MemoryUsage())))
	fmt.Printf("  range:       [%g, %g], mean %g\n", minV, maxV, sum/float64(img.NumPixels()))
	return nil
}

type MeanCmd struct {
	InputParams
	OutputParams
	Patch    []int  `help:"Patch extent per dimension" default:"3,3"`
	OOB      string `help:"Out-of-bounds strategy" default:"mirror" enum:"zero,mirror,mirror-single,periodic,extend"`
	Parallel bool   `help:"Filter on a worker pool"`
}

func (cmd *MeanCmd) Validate(kctx *kong.Context) error {
	if err := validateIO(kctx, &cmd.InputParams, &cmd.OutputParams); err != nil {
		return err
	}
	for _, s := range cmd.Patch {
		if s <= 0 {
			return fmt.Errorf("bad patch extent %v", cmd.Patch)
		}
	}
	return nil
}

func (cmd *MeanCmd) Run(g *Globals) error {
	img, err := cmd.open(g)
	if err != nil {
		return err
	}
	defer img.Close()

	alg, err := algorithm.NewMeanFilter(new(types.FloatType), img, expand(cmd.Patch, img.NumDimensions()))
	if err != nil {
		return err
	}
	oob, err := outofbounds.ParseFactory[*types.FloatType](cmd.OOB)
	if err != nil {
		return err
	}
	alg.SetOutOfBoundsFactory(oob)
	return run(g, alg, cmd.Parallel, &cmd.OutputParams)
}

type SmoothCmd struct {
	InputParams
	OutputParams
	Sigma    []float64 `help:"Gaussian sigma per dimension; the last value repeats" default:"1"`
	Parallel bool      `help:"Filter on a worker pool"`
}

func (cmd *SmoothCmd) Validate(kctx *kong.Context) error {
	if err := validateIO(kctx, &cmd.InputParams, &cmd.OutputParams); err != nil {
		return err
	}
	for _, s := range cmd.Sigma {
		if s <= 0 {
			return fmt.Errorf("bad sigma %v", cmd.Sigma)
		}
	}
	return nil
}

func (cmd *SmoothCmd) Run(g *Globals) error {
	img, err := cmd.open(g)
	if err != nil {
		return err
	}
	defer img.Close()

	sigma := make([]float64, img.NumDimensions())
	for d := range sigma {
		sigma[d] = cmd.Sigma[min(d, len(cmd.Sigma)-1)]
	}
	kernel, dims := algorithm.GaussianKernel(sigma)
	alg, err := algorithm.NewConvolution(new(types.FloatType), img, kernel, dims)
	if err != nil {
		return err
	}
	alg.SetOutOfBoundsFactory(outofbounds.NewMirrorDoubleFactory[*types.FloatType]())
	return run(g, alg, cmd.Parallel, &cmd.OutputParams)
}

// run processes alg and writes its result.
func run(g *Globals, alg *algorithm.ROIAlgorithm[*types.FloatType, *types.FloatType], parallel bool, out *OutputParams) error {
	var ok bool
	if parallel {
		pool := g.pool()
		defer pool.Close()
		ok = alg.ProcessParallel(pool)
	} else {
		ok = alg.Process()
	}
	if !ok {
		return fmt.Errorf("%s: %s", alg.Name(), alg.ErrorMessage())
	}
	result := alg.Result()
	defer result.Close()
	fmt.Printf("%s finished in %s\n", alg.Name(), alg.ProcessingTime())
	return out.save(result)
}

// expand repeats the last patch extent for the remaining dimensions.
func expand(patch []int, n int) []int {
	out := make([]int, n)
	for d := range out {
		out[d] = patch[min(d, len(patch)-1)]
	}
	return out
}

type RegisterCmd struct {
	Fixed    string `arg:"" help:"Reference image" type:"existingfile"`
	Moving   string `arg:"" help:"Image to align to the reference" type:"existingfile"`
	Peaks    int    `help:"Number of phase correlation peaks to examine" default:"5"`
	NoVerify bool   `help:"Rank peaks by phase correlation only"`
}

func (cmd *RegisterCmd) Run(g *Globals) error {
	fixed, err := (&InputParams{Files: []string{cmd.Fixed}}).open(g)
	if err != nil {
		return err
	}
	defer fixed.Close()
	moving, err := (&InputParams{Files: []string{cmd.Moving}}).open(g)
	if err != nil {
		return err
	}
	defer moving.Close()

	pc := fft.NewPhaseCorrelation(fixed, moving)
	pc.NumPeaks = cmd.Peaks
	pc.Verify = !cmd.NoVerify
	pool := g.pool()
	defer pool.Close()
	pc.SetPool(pool)
	if !pc.CheckInput() || !pc.Process() {
		return fmt.Errorf("registration failed: %s", pc.ErrorMessage())
	}
	fmt.Printf("shift %v in %s\n", pc.Shift().Position, pc.ProcessingTime())
	for _, peak := range pc.Peaks() {
		fmt.Printf("  %s\n", peak)
	}
	return nil
}

type FormatsCmd struct{}

func (cmd *FormatsCmd) Run(g *Globals) error {
	fmt.Println("Container layouts:")
	for _, info := range storage.Factories() {
		fmt.Printf("  %-10s %-8s %s\n", info.Name, info.Version, info.Description)
	}
	fmt.Printf("Out-of-bounds strategies: %s\n", strings.Join(outofbounds.FactoryNames(), ", "))
	return nil
}
