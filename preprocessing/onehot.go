package preprocessing

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/taxifare/core/model"
	"github.com/YuminosukeSato/taxifare/pkg/errors"
)

// UnknownPolicy は学習時に無かったカテゴリの扱いを決める
type UnknownPolicy int

const (
	// UnknownBucket は各入力列の末尾に "unknown" 指示列を追加し、未知カテゴリをそこに立てる
	UnknownBucket UnknownPolicy = iota
	// UnknownError は未知カテゴリを ErrUnknownCategory として返す
	UnknownError
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownBucket:
		return "bucket"
	case UnknownError:
		return "error"
	default:
		return "unknown_policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// UnknownCategory is the suffix of the indicator column used by UnknownBucket.
const UnknownCategory = "unknown"

// OneHotEncoder は整数値カテゴリ列をワンホット指示ベクトルに変換する
//
// 各入力列のカテゴリは学習データから昇順で抽出される。出力列の並びは
// 入力列ごとに [カテゴリ昇順..., unknown(UnknownBucketの場合)] となる。
type OneHotEncoder struct {
	state *model.StateManager

	// Categories は各入力列の学習済みカテゴリ（昇順）
	Categories [][]float64

	// HandleUnknown は未知カテゴリの扱い (デフォルト: UnknownBucket)
	HandleUnknown UnknownPolicy

	index   []map[float64]int
	offsets []int
	nOut    int
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder(handleUnknown UnknownPolicy) *OneHotEncoder {
	return &OneHotEncoder{
		state:         model.NewStateManager(),
		HandleUnknown: handleUnknown,
	}
}

// Fit は各列のカテゴリ集合を学習する
func (e *OneHotEncoder) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	e.Categories = make([][]float64, c)
	e.index = make([]map[float64]int, c)
	e.offsets = make([]int, c)
	e.nOut = 0

	for j := 0; j < c; j++ {
		seen := make(map[float64]struct{})
		for i := 0; i < r; i++ {
			seen[X.At(i, j)] = struct{}{}
		}

		cats := make([]float64, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Float64s(cats)

		idx := make(map[float64]int, len(cats))
		for k, v := range cats {
			idx[v] = k
		}

		e.Categories[j] = cats
		e.index[j] = idx
		e.offsets[j] = e.nOut
		e.nOut += e.width(j)
	}

	e.state.SetFitted(c, r)
	return nil
}

// width は入力列 j が占める出力列数
func (e *OneHotEncoder) width(j int) int {
	w := len(e.Categories[j])
	if e.HandleUnknown == UnknownBucket {
		w++
	}
	return w
}

// Transform は学習済みカテゴリに基づいてワンホット行列を返す
func (e *OneHotEncoder) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := e.state.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if err := e.state.RequireFeatures("OneHotEncoder.Transform", c); err != nil {
		return nil, err
	}
	if r == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Transform", "empty data", errors.ErrEmptyData)
	}

	result := mat.NewDense(r, e.nOut, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			k, ok := e.index[j][v]
			if !ok {
				if e.HandleUnknown == UnknownError {
					return nil, errors.Wrapf(errors.ErrUnknownCategory,
						"OneHotEncoder.Transform: value %g in column %d at row %d", v, j, i)
				}
				k = len(e.Categories[j])
			}
			result.Set(i, e.offsets[j]+k, 1)
		}
	}

	return result, nil
}

// FitTransform は学習と変換を同時に実行する
func (e *OneHotEncoder) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}
	return e.Transform(X)
}

// UnknownCount は X に含まれる未知カテゴリの値の数を返す
func (e *OneHotEncoder) UnknownCount(X mat.Matrix) int {
	if !e.state.IsFitted() {
		return 0
	}
	r, c := X.Dims()
	if c != len(e.index) {
		return 0
	}
	n := 0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if _, ok := e.index[j][X.At(i, j)]; !ok {
				n++
			}
		}
	}
	return n
}

// FeatureNames は "列名_カテゴリ" 形式の出力列名を返す
func (e *OneHotEncoder) FeatureNames(input []string) []string {
	names := make([]string, 0, e.nOut)
	for j, cats := range e.Categories {
		prefix := "x" + strconv.Itoa(j)
		if j < len(input) {
			prefix = input[j]
		}
		for _, v := range cats {
			names = append(names, prefix+"_"+strconv.FormatFloat(v, 'g', -1, 64))
		}
		if e.HandleUnknown == UnknownBucket {
			names = append(names, prefix+"_"+UnknownCategory)
		}
	}
	return names
}

// IsFitted は学習済みかどうかを返す
func (e *OneHotEncoder) IsFitted() bool {
	return e.state.IsFitted()
}

// String はエンコーダの文字列表現を返す
func (e *OneHotEncoder) String() string {
	if !e.state.IsFitted() {
		return fmt.Sprintf("OneHotEncoder(handle_unknown=%s)", e.HandleUnknown)
	}
	return fmt.Sprintf("OneHotEncoder(handle_unknown=%s, n_features=%d, n_output=%d)",
		e.HandleUnknown, len(e.Categories), e.nOut)
}
