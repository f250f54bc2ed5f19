package game

import (
	"math"

	"spot_difference/internal/domain"
)

// Tolerance - допуск по каждой оси в долях ширины/высоты картинки.
// Окно квадратное, а не круглое.
const Tolerance = 0.05

// OutcomeKind - результат сопоставления клика
type OutcomeKind string

const (
	OutcomeHit          OutcomeKind = "hit"
	OutcomeMiss         OutcomeKind = "miss"
	OutcomeAlreadyFound OutcomeKind = "already_found"
)

// Click - клик в пикселях относительно левого верхнего угла картинки
// вместе с фактическими размерами отрисованной картинки
type Click struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point - нормализованная точка в [0,1]
type Point struct {
	X float64
	Y float64
}

// Normalize переводит пиксели в доли от размеров отрисованной картинки
func (c Click) Normalize() (Point, error) {
	if c.Width <= 0 || c.Height <= 0 || isBad(c.X) || isBad(c.Y) || isBad(c.Width) || isBad(c.Height) {
		return Point{}, ErrInvalidClick
	}
	return Point{X: c.X / c.Width, Y: c.Y / c.Height}, nil
}

func isBad(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// Outcome - результат Match. Index и Difference заполнены для hit и already_found.
// Round проставляет сессия.
type Outcome struct {
	Kind       OutcomeKind       `json:"outcome"`
	Index      int               `json:"index"`
	Difference domain.Difference `json:"difference"`
	Round      int64             `json:"round,omitempty"`
}

// Match ищет первое по порядку набора отличие, в окно допуска которого попала точка.
// Если оно уже найдено - AlreadyFound, если ни одного нет - Miss.
// Функция чистая, состояние сессии не трогает.
func Match(catalog *domain.DifferenceCatalog, p Point, found map[int]bool) Outcome {
	for i, d := range catalog.Differences {
		if math.Abs(d.X-p.X) < Tolerance && math.Abs(d.Y-p.Y) < Tolerance {
			if found[i] {
				return Outcome{Kind: OutcomeAlreadyFound, Index: i, Difference: d}
			}
			return Outcome{Kind: OutcomeHit, Index: i, Difference: d}
		}
	}
	return Outcome{Kind: OutcomeMiss, Index: -1}
}
