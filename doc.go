// Package taxifare trains a linear regression model that predicts New York
// taxi fares from pickup/dropoff coordinates and the pickup timestamp.
//
// # Workflow
//
// A run is a single synchronous batch:
//
//	raw CSV -> data.Clean -> Dataset.Split -> trainer.Run -> Model.Evaluate (RMSE)
//
// # Packages
//
//   - data: loads the raw trips CSV (file or http(s) URL) with gota, drops
//     invalid rows and splits train/test with a seeded shuffle
//   - features: haversine distance and calendar (dow, hour, month, year) encoders
//   - preprocessing: StandardScaler and OneHotEncoder with an explicit unknown bucket
//   - linear: least squares regression solved through SVD, tolerant of rank-deficient designs
//   - pipeline: ordered branches of encoder + transformers feeding a regressor
//   - trainer: the fixed taxi fare pipeline, Run and Evaluate
//   - metrics: RMSE and other regression metrics
//   - config: viper/godotenv configuration
//   - pkg/log, pkg/errors: zerolog logging and cockroachdb/errors error types
//
// # Quick Start
//
//	ds, _ := data.FromFrame(data.Clean(df))
//	train, test, _ := ds.Split(0.2, 42)
//
//	tr, _ := trainer.New(train.Trips, train.Fares)
//	model, _ := tr.Run()
//	rmse, _ := model.Evaluate(test.Trips, test.Fares)
//
// # Error Handling
//
// Errors carry stack traces (github.com/cockroachdb/errors). Typed errors such
// as ParseError or DimensionError are reachable with errors.As through every
// layer of wrapping:
//
//	var parseErr *errors.ParseError
//	if errors.As(err, &parseErr) {
//	    fmt.Println(parseErr.Row, parseErr.Value)
//	}
package taxifare
