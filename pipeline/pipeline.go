// Package pipeline composes trip encoders, matrix transformers and a
// regressor into one fit/predict unit.
//
// A Pipeline is an unfit description: every call to Fit builds fresh stage
// instances and returns a new Trained handle, so a Pipeline can be fitted any
// number of times and a Trained handle never changes after Fit returns.
//
//	p := pipeline.New([]pipeline.Branch{
//	    {Name: "distance", Encoder: features.NewDistanceTransformer(), Steps: []pipeline.Step{
//	        {Name: "stdscaler", New: func() model.Transformer { return preprocessing.NewStandardScalerDefault() }},
//	    }},
//	}, func() model.Regressor { return linear.NewLinearRegression() })
//	trained, err := p.Fit(trips, fares)
package pipeline

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/taxifare/core/model"
	"github.com/YuminosukeSato/taxifare/data"
	"github.com/YuminosukeSato/taxifare/pkg/errors"
	"github.com/YuminosukeSato/taxifare/pkg/log"
)

// Encoder turns trips into a numeric matrix with a fixed set of columns.
type Encoder interface {
	Name() string
	Columns() []string
	Fit(trips []data.Trip) error
	Transform(trips []data.Trip) (*mat.Dense, error)
}

// Step is a named matrix transformer. New is called once per Fit.
type Step struct {
	Name string
	New  func() model.Transformer
}

// Branch feeds the output of Encoder through Steps in order. Branch outputs
// are concatenated column-wise in branch order; trip fields no branch reads
// do not reach the regressor.
type Branch struct {
	Name    string
	Encoder Encoder
	Steps   []Step
}

// Pipeline is an unfit composition of branches and a regressor.
type Pipeline struct {
	branches     []Branch
	newRegressor func() model.Regressor
	logger       log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for stage timings and unknown-category warnings.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New returns an unfit Pipeline.
func New(branches []Branch, newRegressor func() model.Regressor, opts ...Option) *Pipeline {
	p := &Pipeline{
		branches:     branches,
		newRegressor: newRegressor,
		logger:       log.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Branches returns the branch names in output order.
func (p *Pipeline) Branches() []string {
	names := make([]string, len(p.branches))
	for i, b := range p.branches {
		names[i] = b.Name
	}
	return names
}

type fittedStep struct {
	name        string
	transformer model.Transformer
}

type fittedBranch struct {
	name    string
	encoder Encoder
	steps   []fittedStep
}

// Trained is a fitted pipeline. It is safe to call its methods repeatedly;
// none of them modifies fitted state.
type Trained struct {
	branches  []fittedBranch
	regressor model.Regressor
	names     []string
	logger    log.Logger
}

// Fit fits every stage on X and the regressor on the combined design matrix.
func (p *Pipeline) Fit(X []data.Trip, y []float64) (*Trained, error) {
	if len(X) == 0 {
		return nil, errors.NewModelError("Pipeline.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(X) != len(y) {
		return nil, errors.NewDimensionError("Pipeline.Fit", len(X), len(y), 0)
	}
	if len(p.branches) == 0 {
		return nil, errors.NewValueError("Pipeline.Fit", "no branches")
	}
	if p.newRegressor == nil {
		return nil, errors.NewValueError("Pipeline.Fit", "no regressor")
	}

	t := &Trained{
		branches: make([]fittedBranch, 0, len(p.branches)),
		logger:   p.logger,
	}

	var design *mat.Dense
	for _, b := range p.branches {
		fb, out, names, err := p.fitBranch(b, X)
		if err != nil {
			return nil, err
		}
		t.branches = append(t.branches, fb)
		t.names = append(t.names, names...)
		design = augment(design, out)
	}

	if err := errors.CheckMatrix("design_matrix", design); err != nil {
		return nil, errors.Wrap(err, "Pipeline.Fit")
	}

	start := time.Now()
	reg := p.newRegressor()
	if err := reg.Fit(design, mat.NewDense(len(y), 1, y)); err != nil {
		return nil, errors.Wrap(err, "Pipeline.Fit: regressor")
	}
	t.regressor = reg

	rows, cols := design.Dims()
	p.logger.Debug("Regressor fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return t, nil
}

func (p *Pipeline) fitBranch(b Branch, X []data.Trip) (fittedBranch, *mat.Dense, []string, error) {
	start := time.Now()
	fb := fittedBranch{name: b.Name, encoder: b.Encoder}

	if err := b.Encoder.Fit(X); err != nil {
		return fb, nil, nil, errors.Wrapf(err, "Pipeline.Fit: branch %s", b.Name)
	}
	encoded, err := b.Encoder.Transform(X)
	if err != nil {
		return fb, nil, nil, errors.Wrapf(err, "Pipeline.Fit: branch %s", b.Name)
	}

	var out mat.Matrix = encoded
	names := b.Encoder.Columns()
	for _, s := range b.Steps {
		tr := s.New()
		out, err = tr.FitTransform(out)
		if err != nil {
			return fb, nil, nil, errors.Wrapf(err, "Pipeline.Fit: step %s/%s", b.Name, s.Name)
		}
		if namer, ok := tr.(model.FeatureNamer); ok {
			names = namer.FeatureNames(names)
		}
		fb.steps = append(fb.steps, fittedStep{name: s.Name, transformer: tr})
	}

	qualified := make([]string, len(names))
	for i, n := range names {
		qualified[i] = b.Name + "__" + n
	}

	_, cols := out.Dims()
	p.logger.Debug("Branch fitted",
		log.StageKey, b.Name,
		log.OperationKey, log.OperationFitTransform,
		log.FeaturesKey, cols,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return fb, mat.DenseCopyOf(out), qualified, nil
}

// augment appends the columns of b to a. A nil a returns b.
func augment(a, b *mat.Dense) *mat.Dense {
	if a == nil {
		return b
	}
	var out mat.Dense
	out.Augment(a, b)
	return &out
}

// unknownCounter is implemented by transformers that can report values they
// were not fitted on.
type unknownCounter interface {
	UnknownCount(X mat.Matrix) int
}

// Transform builds the design matrix for X with the fitted stages.
func (t *Trained) Transform(X []data.Trip) (*mat.Dense, error) {
	if len(X) == 0 {
		return nil, errors.NewModelError("Trained.Transform", "empty data", errors.ErrEmptyData)
	}

	var design *mat.Dense
	for _, b := range t.branches {
		encoded, err := b.encoder.Transform(X)
		if err != nil {
			return nil, errors.Wrapf(err, "Trained.Transform: branch %s", b.name)
		}

		var out mat.Matrix = encoded
		for _, s := range b.steps {
			if uc, ok := s.transformer.(unknownCounter); ok {
				if n := uc.UnknownCount(out); n > 0 {
					t.logger.Warn("Unknown categories mapped to unknown bucket",
						log.StageKey, b.name+"/"+s.name,
						log.UnknownCategoriesKey, n,
					)
				}
			}
			out, err = s.transformer.Transform(out)
			if err != nil {
				return nil, errors.Wrapf(err, "Trained.Transform: step %s/%s", b.name, s.name)
			}
		}
		design = augment(design, mat.DenseCopyOf(out))
	}
	return design, nil
}

// Predict returns one prediction per trip.
func (t *Trained) Predict(X []data.Trip) ([]float64, error) {
	design, err := t.Transform(X)
	if err != nil {
		return nil, err
	}

	pred, err := t.regressor.Predict(design)
	if err != nil {
		return nil, errors.Wrap(err, "Trained.Predict")
	}
	if err := errors.CheckMatrix("predict", pred); err != nil {
		return nil, errors.Wrap(err, "Trained.Predict")
	}
	return mat.Col(nil, 0, pred), nil
}

// FeatureNames returns the design matrix column names as "branch__column".
func (t *Trained) FeatureNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Regressor returns the fitted regressor.
func (t *Trained) Regressor() model.Regressor {
	return t.regressor
}
