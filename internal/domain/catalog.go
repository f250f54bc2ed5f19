package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty - вариант игры, выбирающий фиксированный набор картинок
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	// сложность по умолчанию, если клиент её не передал
	DefaultDifficulty = DifficultyMedium
)

// координаты в исходных данных заданы в шкале 0-100
const SourceScale = 100.0

var (
	ErrUnknownDifficulty = errors.New("неизвестная сложность")
	ErrInvalidCatalog    = errors.New("некорректный набор отличий")
)

// Difficulties возвращает все поддерживаемые сложности в порядке возрастания
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty разбирает строку сложности; пустая строка даёт сложность по умолчанию
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultDifficulty, nil
	}
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Difference - точка отличия в нормализованных координатах [0,1]
type Difference struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DifferenceFromSource переводит координаты из шкалы 0-100 в [0,1]
func DifferenceFromSource(x, y float64) Difference {
	return Difference{X: x / SourceScale, Y: y / SourceScale}
}

func (d Difference) inBounds() bool {
	return d.X >= 0 && d.X <= 1 && d.Y >= 0 && d.Y <= 1
}

// DifferenceCatalog описывает пару картинок и список отличий для одной сложности.
// После загрузки не изменяется.
type DifferenceCatalog struct {
	ID          int64        `json:"id"`
	Difficulty  Difficulty   `json:"difficulty"`
	ImageURL1   string       `json:"image_url_1"`
	ImageURL2   string       `json:"image_url_2"`
	Differences []Difference `json:"differences"`
}

// Total - количество отличий в наборе
func (c *DifferenceCatalog) Total() int {
	return len(c.Differences)
}

// Validate проверяет сложность и то, что все точки лежат внутри картинки
func (c *DifferenceCatalog) Validate() error {
	if !c.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDifficulty, c.Difficulty)
	}
	if len(c.Differences) == 0 {
		return fmt.Errorf("%w: пустой список отличий", ErrInvalidCatalog)
	}
	for i, d := range c.Differences {
		if !d.inBounds() {
			return fmt.Errorf("%w: отличие %d вне картинки (%.3f, %.3f)", ErrInvalidCatalog, i, d.X, d.Y)
		}
	}
	return nil
}

// Clone возвращает копию, которую можно безопасно отдать наружу
func (c *DifferenceCatalog) Clone() *DifferenceCatalog {
	out := *c
	out.Differences = append([]Difference(nil), c.Differences...)
	return &out
}

// CatalogSummary - краткое описание набора для списка наборов
type CatalogSummary struct {
	ID         int64      `json:"id"`
	Difficulty Difficulty `json:"difficulty"`
}
