// Package trainer fits the taxi fare pipeline and evaluates it on held-out
// trips.
//
// The pipeline is fixed: the haversine distance standardized to zero mean and
// unit variance, plus day of week, hour, month and year one-hot encoded with
// an explicit unknown bucket, feeding an ordinary least squares regression.
// Trip fields no branch reads (key, passenger_count) are dropped.
//
//	tr, err := trainer.New(train.Trips, train.Fares, trainer.WithLogger(logger))
//	model, err := tr.Run()
//	rmse, err := model.Evaluate(test.Trips, test.Fares)
package trainer

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/taxifare/core/model"
	"github.com/YuminosukeSato/taxifare/data"
	"github.com/YuminosukeSato/taxifare/features"
	"github.com/YuminosukeSato/taxifare/linear"
	"github.com/YuminosukeSato/taxifare/metrics"
	"github.com/YuminosukeSato/taxifare/pipeline"
	"github.com/YuminosukeSato/taxifare/pkg/errors"
	"github.com/YuminosukeSato/taxifare/pkg/log"
	"github.com/YuminosukeSato/taxifare/preprocessing"
)

// Trainer owns a training set and the unfit pipeline built for it.
type Trainer struct {
	X []data.Trip
	y []float64

	pipeline *pipeline.Pipeline

	loc    *time.Location
	logger log.Logger
	runID  string
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// WithLocation sets the time zone of the calendar features. The default is
// features.DefaultTimezone.
func WithLocation(loc *time.Location) Option {
	return func(t *Trainer) {
		t.loc = loc
	}
}

// WithRunID sets the id attached to every log record. The default is a
// random UUID.
func WithRunID(id string) Option {
	return func(t *Trainer) {
		t.runID = id
	}
}

// New returns a Trainer for the trips X and fares y. The slices are copied.
func New(X []data.Trip, y []float64, opts ...Option) (*Trainer, error) {
	if len(X) == 0 {
		return nil, errors.NewModelError("trainer.New", "empty data", errors.ErrEmptyData)
	}
	if len(X) != len(y) {
		return nil, errors.NewDimensionError("trainer.New", len(X), len(y), 0)
	}

	t := &Trainer{
		X:      append([]data.Trip(nil), X...),
		y:      append([]float64(nil), y...),
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.runID == "" {
		t.runID = uuid.NewString()
	}
	t.logger = t.logger.With(
		log.EstimatorIDKey, t.runID,
		log.ComponentKey, "trainer",
	)
	return t, nil
}

// RunID returns the id attached to this trainer's log records.
func (t *Trainer) RunID() string {
	return t.runID
}

// SetPipeline builds the unfit pipeline. Calling it again replaces the
// pipeline with an identical one.
func (t *Trainer) SetPipeline() error {
	timeEnc, err := features.NewTimeFeaturesEncoder(t.loc)
	if err != nil {
		return errors.Wrap(err, "trainer.SetPipeline")
	}

	distPipe := pipeline.Branch{
		Name:    "distance",
		Encoder: features.NewDistanceTransformer(),
		Steps: []pipeline.Step{
			{Name: "stdscaler", New: func() model.Transformer { return preprocessing.NewStandardScalerDefault() }},
		},
	}
	timePipe := pipeline.Branch{
		Name:    "time",
		Encoder: timeEnc,
		Steps: []pipeline.Step{
			{Name: "ohe", New: func() model.Transformer { return preprocessing.NewOneHotEncoder(preprocessing.UnknownBucket) }},
		},
	}

	t.pipeline = pipeline.New(
		[]pipeline.Branch{distPipe, timePipe},
		func() model.Regressor { return linear.NewLinearRegression() },
		pipeline.WithLogger(t.logger),
	)
	return nil
}

// Pipeline returns the unfit pipeline, or nil before SetPipeline or Run.
func (t *Trainer) Pipeline() *pipeline.Pipeline {
	return t.pipeline
}

// Run fits the pipeline on the training set, building it first if needed.
func (t *Trainer) Run() (*Model, error) {
	if t.pipeline == nil {
		if err := t.SetPipeline(); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	t.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, len(t.X),
	)

	trained, err := t.pipeline.Fit(t.X, t.y)
	if err != nil {
		t.logger.Error("Training failed", err,
			log.OperationKey, log.OperationFit,
		)
		return nil, errors.Wrap(err, "trainer.Run")
	}

	fields := []any{
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.ModelNameKey, "LinearRegression",
		log.FeaturesKey, len(trained.FeatureNames()),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	if lr, ok := trained.Regressor().(*linear.LinearRegression); ok {
		fields = append(fields, log.RankKey, lr.Rank())
	}
	t.logger.Info("Training completed", fields...)

	return &Model{
		trained: trained,
		logger:  t.logger,
		runID:   t.runID,
	}, nil
}

// Model is the result of a successful Run.
type Model struct {
	trained *pipeline.Trained
	logger  log.Logger
	runID   string
}

// RunID returns the id of the run that produced m.
func (m *Model) RunID() string {
	return m.runID
}

// Pipeline returns the fitted pipeline.
func (m *Model) Pipeline() *pipeline.Trained {
	return m.trained
}

// Predict returns the predicted fare of each trip.
func (m *Model) Predict(X []data.Trip) ([]float64, error) {
	if m.trained == nil {
		return nil, errors.NewNotFittedError("Model", "Predict")
	}
	return m.trained.Predict(X)
}

// Evaluate predicts XTest and returns the RMSE against yTest.
func (m *Model) Evaluate(XTest []data.Trip, yTest []float64) (float64, error) {
	if m.trained == nil {
		return 0, errors.NewNotFittedError("Model", "Evaluate")
	}
	if len(XTest) != len(yTest) {
		return 0, errors.NewDimensionError("Model.Evaluate", len(XTest), len(yTest), 0)
	}

	pred, err := m.trained.Predict(XTest)
	if err != nil {
		m.logger.Error("Evaluation failed", err, log.OperationKey, log.OperationEvaluate)
		return 0, errors.Wrap(err, "Model.Evaluate")
	}

	rmse, err := metrics.ComputeRMSE(pred, yTest)
	if err != nil {
		return 0, errors.Wrap(err, "Model.Evaluate")
	}

	fields := []any{
		log.OperationKey, log.OperationEvaluate,
		log.PhaseKey, log.PhaseTesting,
		log.SamplesKey, len(yTest),
		log.RMSEKey, rmse,
	}

	yTrue := mat.NewVecDense(len(yTest), yTest)
	yPred := mat.NewVecDense(len(pred), pred)
	if mae, err := metrics.MAE(yTrue, yPred); err == nil {
		fields = append(fields, log.MAEKey, mae)
	}
	if r2, err := metrics.R2Score(yTrue, yPred); err == nil {
		fields = append(fields, log.R2ScoreKey, r2)
	} else {
		m.logger.Debug("R2 score skipped", err, log.OperationKey, log.OperationEvaluate)
	}

	m.logger.Info("Evaluation completed", fields...)
	return rmse, nil
}
