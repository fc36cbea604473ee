package data

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Plausibility bounds applied by Clean.
const (
	MaxFare           = 4000.0
	MinPassengerCount = 1
	MaxPassengerCount = 8 // exclusive

	MinLatitude         = 40.0
	MaxLatitude         = 42.0
	MinPickupLongitude  = -74.3
	MinDropoffLongitude = -74.0
	MaxLongitude        = -72.9
)

// Clean drops rows with a missing schema value, a zero-zero pickup or dropoff
// coordinate, a fare outside (0, MaxFare], a passenger count outside
// [MinPassengerCount, MaxPassengerCount) or coordinates outside the New York
// bounding box. Cleaning an already cleaned frame drops nothing.
func Clean(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Nrow() == 0 {
		return df
	}

	df = dropMissing(df)
	if df.Nrow() == 0 {
		return df
	}

	// (0, 0) は座標欠損の代用値
	df = df.FilterAggregation(dataframe.Or,
		dataframe.F{Colname: ColPickupLatitude, Comparator: series.Neq, Comparando: 0.0},
		dataframe.F{Colname: ColPickupLongitude, Comparator: series.Neq, Comparando: 0.0},
	)
	df = df.FilterAggregation(dataframe.Or,
		dataframe.F{Colname: ColDropoffLatitude, Comparator: series.Neq, Comparando: 0.0},
		dataframe.F{Colname: ColDropoffLongitude, Comparator: series.Neq, Comparando: 0.0},
	)

	return df.FilterAggregation(dataframe.And,
		dataframe.F{Colname: ColFareAmount, Comparator: series.Greater, Comparando: 0.0},
		dataframe.F{Colname: ColFareAmount, Comparator: series.LessEq, Comparando: MaxFare},

		dataframe.F{Colname: ColPassengerCount, Comparator: series.GreaterEq, Comparando: MinPassengerCount},
		dataframe.F{Colname: ColPassengerCount, Comparator: series.Less, Comparando: MaxPassengerCount},

		dataframe.F{Colname: ColPickupLatitude, Comparator: series.GreaterEq, Comparando: MinLatitude},
		dataframe.F{Colname: ColPickupLatitude, Comparator: series.LessEq, Comparando: MaxLatitude},
		dataframe.F{Colname: ColPickupLongitude, Comparator: series.GreaterEq, Comparando: MinPickupLongitude},
		dataframe.F{Colname: ColPickupLongitude, Comparator: series.LessEq, Comparando: MaxLongitude},

		dataframe.F{Colname: ColDropoffLatitude, Comparator: series.GreaterEq, Comparando: MinLatitude},
		dataframe.F{Colname: ColDropoffLatitude, Comparator: series.LessEq, Comparando: MaxLatitude},
		dataframe.F{Colname: ColDropoffLongitude, Comparator: series.GreaterEq, Comparando: MinDropoffLongitude},
		dataframe.F{Colname: ColDropoffLongitude, Comparator: series.LessEq, Comparando: MaxLongitude},
	)
}

// dropMissing keeps the rows with no NA in any required column.
func dropMissing(df dataframe.DataFrame) dataframe.DataFrame {
	keep := make([]bool, df.Nrow())
	for i := range keep {
		keep[i] = true
	}
	for _, col := range requiredColumns {
		for i, na := range df.Col(col).IsNaN() {
			if na {
				keep[i] = false
			}
		}
	}

	idx := make([]int, 0, len(keep))
	for i, ok := range keep {
		if ok {
			idx = append(idx, i)
		}
	}
	if len(idx) == len(keep) {
		return df
	}
	return df.Subset(idx)
}
