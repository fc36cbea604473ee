// Package log defines standard attribute keys for training runs.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that runs can be filtered and compared in log storage.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator or transformer.
	// Examples: "LinearRegression", "StandardScaler", "OneHotEncoder"
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one training run (a UUID generated by the trainer).
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "evaluate", "load", "clean"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "data", "pipeline", "trainer"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run.
	PhaseKey = "ml.phase"

	// StageKey names a pipeline branch or step, e.g. "distance", "time/ohe".
	StageKey = "pipeline.stage"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// DroppedKey indicates the number of rows removed by cleaning.
	DroppedKey = "data.dropped"

	// SourceKey records where the raw dataset was read from.
	SourceKey = "data.source"

	// UnknownCategoriesKey counts categorical values not seen during fit.
	UnknownCategoriesKey = "data.unknown_categories"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RMSEKey records root-mean-squared error on held-out data.
	RMSEKey = "metrics.rmse"

	// MAEKey records mean absolute error on held-out data.
	MAEKey = "metrics.mae"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// RankKey records the numerical rank of the design matrix.
	RankKey = "model.rank"
)

// Hyperparameters and Configuration
const (
	// RandomSeedKey records the split seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// TestSizeKey records the held-out fraction.
	TestSizeKey = "config.test_size"

	// TimezoneKey records the time zone used for calendar features.
	TimezoneKey = "config.timezone"
)

// Standard attribute values.
const (
	OperationLoad         = "load"
	OperationClean        = "clean"
	OperationSplit        = "split"
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationEvaluate     = "evaluate"

	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseTesting       = "testing"
)
