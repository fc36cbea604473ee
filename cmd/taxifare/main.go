// Command taxifare trains the fare model on a hold-out split and prints the
// test RMSE.
//
// Configuration comes from .env, an optional taxifare.yaml (or the file named
// by TAXIFARE_CONFIG) and TAXIFARE_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/YuminosukeSato/taxifare/config"
	"github.com/YuminosukeSato/taxifare/data"
	"github.com/YuminosukeSato/taxifare/pkg/log"
	"github.com/YuminosukeSato/taxifare/trainer"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("TAXIFARE_CONFIG"))
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, level)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	df, err := data.Load(ctx, cfg.Data.Source, data.WithMaxRows(cfg.Data.MaxRows))
	if err != nil {
		logger.Error("Loading data failed", err, log.SourceKey, cfg.Data.Source)
		return err
	}
	logger.Info("Data loaded",
		log.OperationKey, log.OperationLoad,
		log.SourceKey, cfg.Data.Source,
		log.SamplesKey, df.Nrow(),
	)

	cleaned := data.Clean(df)
	if cleaned.Err != nil {
		return cleaned.Err
	}
	logger.Info("Data cleaned",
		log.OperationKey, log.OperationClean,
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, cleaned.Nrow(),
		log.DroppedKey, df.Nrow()-cleaned.Nrow(),
	)

	ds, err := data.FromFrame(cleaned)
	if err != nil {
		return err
	}

	train, test, err := ds.Split(cfg.Split.TestSize, cfg.Split.Seed)
	if err != nil {
		return err
	}
	logger.Info("Data split",
		log.OperationKey, log.OperationSplit,
		log.TestSizeKey, cfg.Split.TestSize,
		log.RandomSeedKey, cfg.Split.Seed,
		"data.train_samples", train.Len(),
		"data.test_samples", test.Len(),
	)

	tr, err := trainer.New(train.Trips, train.Fares,
		trainer.WithLogger(logger.With(log.TimezoneKey, loc.String())),
		trainer.WithLocation(loc),
	)
	if err != nil {
		return err
	}

	model, err := tr.Run()
	if err != nil {
		return err
	}

	rmse, err := model.Evaluate(test.Trips, test.Fares)
	if err != nil {
		return err
	}

	fmt.Println(rmse)
	return nil
}
